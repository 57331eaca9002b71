package todotest

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/calvinmclean/todoapi"
	"github.com/stretchr/testify/require"
)

// CORSHeaders are expected on every response from the API
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "content-type, accept",
	"Access-Control-Allow-Methods": "OPTIONS, GET, POST, DELETE",
}

// Response is the result of a test request. Data is the decoded JSON body
type Response = todoapi.Response[any]

// TestCase is a single test step that executes the provided Test and compares to the ExpectedResponse
type TestCase struct {
	Name string

	// Test is the runnable test to execute before assertions
	Test Test

	// Assert allows setting a function for custom assertions after making a request
	Assert func(*testing.T, *Response)

	// Expected response to compare
	ExpectedResponse
}

// Test is an interface that allows executing different types of tests before running assertions
type Test interface {
	Run(t *testing.T, client *todoapi.Client, getResponse PreviousResponseGetter) (*Response, error)
}

// ExpectedResponse sets up the expectations when running a test
type ExpectedResponse struct {
	// NoBody sets the expectation that the response will have an empty body. This is used because leaving Body
	// empty will just skip the test, not assert the response is empty
	NoBody bool
	// Body is the expected response body string
	Body string
	// BodyRegexp allows comparing a request body by regex
	BodyRegexp string
	// Status is the expected HTTP response code
	Status int
	// Headers are compared in addition to CORSHeaders
	Headers map[string]string
}

// Run will execute a Test using t.Run to run with the test name. The API is expected to already be running
func (tt TestCase) Run(t *testing.T, client *todoapi.Client) *Response {
	var resp *Response
	t.Run(tt.Name, func(t *testing.T) {
		resp = tt.run(t, client, nil)
	})
	return resp
}

func (tt TestCase) run(t *testing.T, client *todoapi.Client, getResponse PreviousResponseGetter) *Response {
	r, err := tt.Test.Run(t, client, getResponse)
	require.NoError(t, err)
	require.NotNil(t, r)

	tt.assertResponse(t, r)

	if tt.Assert != nil {
		tt.Assert(t, r)
	}

	return r
}

func (tt TestCase) assertResponse(t *testing.T, r *Response) {
	require.Equal(t, tt.ExpectedResponse.Status, r.Response.StatusCode)

	for header, value := range CORSHeaders {
		require.Equal(t, value, r.Response.Header.Get(header), "header %s", header)
	}
	for header, value := range tt.ExpectedResponse.Headers {
		require.Equal(t, value, r.Response.Header.Get(header), "header %s", header)
	}

	switch {
	case tt.NoBody:
		require.Equal(t, "", r.Body)
	case tt.BodyRegexp != "":
		require.Regexp(t, tt.ExpectedResponse.BodyRegexp, strings.TrimSpace(r.Body))
	case tt.Body != "":
		require.Equal(t, tt.ExpectedResponse.Body, strings.TrimSpace(r.Body))
	}
}

// ResponseID returns the "id" field of a JSON object response as a string so it can be used in a URL
func ResponseID(r *Response) string {
	if r == nil {
		return ""
	}

	obj, ok := r.Data.(map[string]any)
	if !ok {
		return ""
	}

	switch id := obj["id"].(type) {
	case float64:
		return fmt.Sprintf("%d", int64(id))
	case string:
		return id
	}
	return ""
}

// RequestFuncTest is used to create an *http.Request from the provided address and create a response for assertions
type RequestFuncTest func(getResponse PreviousResponseGetter, address string) *http.Request

var _ Test = RequestFuncTest(nil)

func (tt RequestFuncTest) Run(t *testing.T, client *todoapi.Client, getResponse PreviousResponseGetter) (*Response, error) {
	r := tt(getResponse, client.Address)
	return client.MakeRequest(r, 0)
}
