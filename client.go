package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Response wraps an HTTP response from the API and allows easy access to the decoded response type (if JSON),
// the ContentType, string Body, and the original response
type Response[T any] struct {
	ContentType string
	Body        string
	Data        T
	Response    *http.Response
}

func newResponse[T any](resp *http.Response, expectedStatusCode int) (*Response[T], error) {
	defer resp.Body.Close()

	result := &Response[T]{
		ContentType: resp.Header.Get("Content-Type"),
		Response:    resp,
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	result.Body = string(body)

	if resp.StatusCode != expectedStatusCode && expectedStatusCode != 0 {
		if result.Body == "" {
			return nil, fmt.Errorf("unexpected status and no body: %d", resp.StatusCode)
		}

		var httpErr *ErrResponse
		err := json.Unmarshal(body, &httpErr)
		if err != nil {
			return nil, fmt.Errorf("error decoding error response %q: %w", result.Body, err)
		}
		httpErr.HTTPStatusCode = resp.StatusCode
		return nil, httpErr
	}

	if strings.HasPrefix(result.ContentType, "application/json") && result.Body != "" {
		err := json.Unmarshal(body, &result.Data)
		if err != nil {
			return nil, fmt.Errorf("error decoding response body %q: %w", result.Body, err)
		}
	}

	return result, nil
}

// Fprint writes the Response body to the provided Writer. If the ContentType is JSON, it will JSON encode
// the body. Setting pretty=true will print indented JSON.
func (sr *Response[T]) Fprint(out io.Writer, pretty bool) error {
	if sr == nil {
		_, err := fmt.Fprint(out, "null")
		return err
	}

	var err error
	switch {
	case strings.HasPrefix(sr.ContentType, "application/json"):
		encoder := json.NewEncoder(out)
		if pretty {
			encoder.SetIndent("", "\t")
		}
		err = encoder.Encode(sr.Data)
	default:
		_, err = fmt.Fprint(out, sr.Body)
	}
	return err
}

// RequestEditor is a function that can modify the HTTP request before sending
type RequestEditor = func(*http.Request) error

var DefaultRequestEditor RequestEditor = func(r *http.Request) error {
	return nil
}

// Client is used to interact with the Todo API
type Client struct {
	Address       string
	base          string
	client        *http.Client
	requestEditor RequestEditor
}

// NewClient initializes a Client for interacting with the Todo API
func NewClient(addr, base string) *Client {
	return &Client{
		addr,
		strings.Trim(base, "/"),
		http.DefaultClient,
		DefaultRequestEditor,
	}
}

// SetHTTPClient allows overriding the Clients HTTP client with a custom one
func (c *Client) SetHTTPClient(client *http.Client) *Client {
	c.client = client
	return c
}

// SetRequestEditor sets a request editor function that is used to modify all requests before sending. This is useful
// for adding custom request headers
func (c *Client) SetRequestEditor(requestEditor RequestEditor) *Client {
	c.requestEditor = requestEditor
	return c
}

// Get will get a Todo by ID
func (c *Client) Get(ctx context.Context, id int64) (*Response[*Todo], error) {
	req, err := c.GetRequest(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	result, err := MakeRequest[*Todo](req, c.client, http.StatusOK, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error getting todo: %w", err)
	}

	return result, nil
}

// GetRequest creates a request that can be used to get a Todo. The ID is not validated so it can be used to
// test invalid IDs
func (c *Client) GetRequest(ctx context.Context, id string) (*http.Request, error) {
	return c.NewRequest(ctx, http.MethodGet, http.NoBody, id)
}

// List gets all Todos from the API
func (c *Client) List(ctx context.Context) (*Response[[]*Todo], error) {
	req, err := c.ListRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	result, err := MakeRequest[[]*Todo](req, c.client, http.StatusOK, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error listing todos: %w", err)
	}

	return result, nil
}

// ListRequest creates a request that can be used to list all Todos
func (c *Client) ListRequest(ctx context.Context) (*http.Request, error) {
	return c.NewRequest(ctx, http.MethodGet, http.NoBody, "")
}

// Create makes a POST request to create a new Todo
func (c *Client) Create(ctx context.Context, todo *Todo) (*Response[*Todo], error) {
	var body bytes.Buffer
	err := json.NewEncoder(&body).Encode(todo)
	if err != nil {
		return nil, fmt.Errorf("error encoding request body: %w", err)
	}

	return c.create(ctx, &body)
}

// CreateRaw makes a POST request using the provided string as the body
func (c *Client) CreateRaw(ctx context.Context, body string) (*Response[*Todo], error) {
	return c.create(ctx, bytes.NewBufferString(body))
}

// CreateRequest creates a request that can be used to POST a Todo
func (c *Client) CreateRequest(ctx context.Context, body io.Reader) (*http.Request, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, body, "")
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", "application/json")

	return req, nil
}

func (c *Client) create(ctx context.Context, body io.Reader) (*Response[*Todo], error) {
	req, err := c.CreateRequest(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	result, err := MakeRequest[*Todo](req, c.client, http.StatusOK, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error creating todo: %w", err)
	}

	return result, nil
}

// DeleteAll makes a DELETE request to remove every Todo
func (c *Client) DeleteAll(ctx context.Context) (*Response[any], error) {
	req, err := c.DeleteAllRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := MakeRequest[any](req, c.client, http.StatusOK, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error deleting todos: %w", err)
	}

	return resp, nil
}

// DeleteAllRequest creates a request that can be used to delete all Todos
func (c *Client) DeleteAllRequest(ctx context.Context) (*http.Request, error) {
	return c.NewRequest(ctx, http.MethodDelete, http.NoBody, "")
}

// NewRequest uses http.NewRequestWithContext to create a new request using the URL created from the provided ID
func (c *Client) NewRequest(ctx context.Context, method string, body io.Reader, id string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.URL(id), body)
}

// URL gets the URL based on provided ID
func (c *Client) URL(id string) string {
	path := fmt.Sprintf("%s/%s", strings.TrimRight(c.Address, "/"), c.base)
	if id != "" {
		path += fmt.Sprintf("/%s", id)
	}
	return path
}

// MakeRequest sends the request with this Client's HTTP client and request editor. It is useful for
// requests that are not covered by the other methods
func (c *Client) MakeRequest(req *http.Request, expectedStatusCode int) (*Response[any], error) {
	return MakeRequest[any](req, c.client, expectedStatusCode, c.requestEditor)
}

// MakeRequest generically sends an HTTP request after calling the request editor and checks the response code
// It returns a Response which contains the http.Response after extracting the body to Body string and
// JSON decoding into Data if the response is JSON
func MakeRequest[T any](req *http.Request, client *http.Client, expectedStatusCode int, requestEditor RequestEditor) (*Response[T], error) {
	if requestEditor != nil {
		err := requestEditor(req)
		if err != nil {
			return nil, fmt.Errorf("error returned from request editor: %w", err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}

	return newResponse[T](resp, expectedStatusCode)
}
