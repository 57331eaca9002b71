package todotest

import (
	"testing"

	"github.com/calvinmclean/todoapi"
)

// PreviousResponseGetter is used to get the output of previous tests in a TableTest
type PreviousResponseGetter func(testName string) *Response

// RunTableTest will start the provided API and execute all provided tests in-order. This allows the usage of a
// PreviousResponseGetter in each test to access data from previous tests
func RunTableTest(t *testing.T, api *todoapi.API, tests []TestCase) {
	client, stop := NewTestClient(t, api)
	defer stop()

	results := map[string]*Response{}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			results[tt.Name] = tt.run(t, client, func(testName string) *Response {
				return results[testName]
			})
		})
	}
}
