package todotest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/calvinmclean/todoapi"
)

// RequestTest contains the necessary details to make a test request to the API. The Func fields allow dynamically
// creating parts of the request. When used in a TableTest, a PreviousResponseGetter is provided so you can get
// IDs from previous responses or use other details. When not used in a table test, this will always be nil
type RequestTest struct {
	// HTTP request method/verb
	Method string

	// ID is the Todo ID used in the request path
	ID string
	// IDFunc returns the Todo ID from a function which can access previous test responses
	IDFunc func(getResponse PreviousResponseGetter) string

	// Body is the request body as a string
	Body string
	// BodyFunc returns request body from a function which can access previous test responses
	BodyFunc func(getResponse PreviousResponseGetter) string
}

var _ Test = RequestTest{}

func (tt RequestTest) Run(t *testing.T, client *todoapi.Client, getResponse PreviousResponseGetter) (*Response, error) {
	id := tt.ID
	if tt.IDFunc != nil {
		id = tt.IDFunc(getResponse)
	}

	body := tt.Body
	if tt.BodyFunc != nil {
		body = tt.BodyFunc(getResponse)
	}

	var reqBody io.Reader = http.NoBody
	if body != "" {
		reqBody = bytes.NewBufferString(body)
	}

	req, err := client.NewRequest(context.Background(), tt.Method, reqBody, id)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return client.MakeRequest(req, 0)
}
