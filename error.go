package todoapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

var ErrNotFoundResponse = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
var ErrMethodNotAllowedResponse = &ErrResponse{HTTPStatusCode: http.StatusMethodNotAllowed, StatusText: "Method not allowed."}

// ErrResponse is an error that implements Renderer to be used in HTTP response
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`          // user-level status message
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

func (e *ErrResponse) Error() string {
	return fmt.Sprintf("unexpected response with text: %s", e.StatusText)
}

func (e *ErrResponse) Unwrap() error {
	return e.Err
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrRender(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

func ErrInvalidRequest(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrBodyTooLarge(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusRequestEntityTooLarge,
		StatusText:     "Request body too large.",
		ErrorText:      err.Error(),
	}
}

func ErrStorageUnavailable(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusServiceUnavailable,
		StatusText:     "Storage unavailable.",
		ErrorText:      err.Error(),
	}
}

func InternalServerError(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Server Error.",
		ErrorText:      err.Error(),
	}
}

// StorageErrResponse maps an error returned by Storage to the matching response
func StorageErrResponse(err error) *ErrResponse {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFoundResponse
	case errors.Is(err, ErrUnavailable):
		return ErrStorageUnavailable(err)
	default:
		return InternalServerError(err)
	}
}

// BindErrResponse maps an error from decoding and binding a request body to the matching response
func BindErrResponse(err error) *ErrResponse {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return ErrBodyTooLarge(err)
	}
	return ErrInvalidRequest(err)
}
