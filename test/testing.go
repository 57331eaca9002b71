package todotest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calvinmclean/todoapi"
	"github.com/stretchr/testify/require"
)

// TestServe is meant to be used in external tests to automatically handle setting up routes and using httptest
func TestServe(t *testing.T, api *todoapi.API) (string, func()) {
	router, err := api.Router()
	require.NoError(t, err)

	server := httptest.NewServer(router)
	return server.URL, server.Close
}

// TestRequest is meant to be used in external tests to automatically handle setting up routes and using httptest
func TestRequest(t *testing.T, api *todoapi.API, r *http.Request) *httptest.ResponseRecorder {
	router, err := api.Router()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	return w
}

// NewTestClient runs the API using TestServe and returns a Client with the correct base URL
func NewTestClient(t *testing.T, api *todoapi.API) (*todoapi.Client, func()) {
	serverURL, stop := TestServe(t, api)
	return api.Client(serverURL), stop
}
