package todoapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// IDParamKey is the chi URL param key used for the ID of a Todo
const IDParamKey = "TodoID"

// GetIDParam gets the raw Todo ID from the request URL
func GetIDParam(r *http.Request) string {
	return chi.URLParam(r, IDParamKey)
}

// ParseID parses a Todo ID. IDs are positive integers
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an integer", raw)
	}
	if id < 1 {
		return 0, fmt.Errorf("invalid id %q: must be positive", raw)
	}
	return id, nil
}

// Handler wraps a function that returns a render.Renderer so it can be used as an http.HandlerFunc. If the
// function returns nil, it is expected to have written the response already
func Handler(do func(http.ResponseWriter, *http.Request) render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := do(w, r)
		if resp == nil {
			return
		}

		err := render.Render(w, r, resp)
		if err != nil {
			GetLoggerFromContext(r.Context()).Error("unable to render response", "error", err)
			_ = render.Render(w, r, ErrRender(err))
		}
	}
}

// ReadRequestBodyAndDo is a wrapper that handles decoding the request body into a Todo and rendering a response
func (a *API) ReadRequestBodyAndDo(do func(*http.Request, *Todo) (*Todo, *ErrResponse)) http.HandlerFunc {
	return Handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		logger := GetLoggerFromContext(r.Context())

		todo, httpErr := GetTodoFromRequest(r)
		if httpErr != nil {
			logger.Error("invalid request to create todo", "error", httpErr.ErrorText)
			return httpErr
		}

		resp, httpErr := do(r, todo)
		if httpErr != nil {
			return httpErr
		}

		return resp
	})
}

// GetTodoFromRequest decodes and validates a Todo from the request body. The body is decoded as JSON
// regardless of Content-Type
func GetTodoFromRequest(r *http.Request) (*Todo, *ErrResponse) {
	todo := &Todo{}
	err := render.DecodeJSON(r.Body, todo)
	if err != nil {
		return nil, BindErrResponse(err)
	}

	err = todo.Bind(r)
	if err != nil {
		return nil, ErrInvalidRequest(err)
	}

	return todo, nil
}

// GetRequestedTodo reads the Todo from storage based on the ID in the request URL
func (a *API) GetRequestedTodo(r *http.Request) (*Todo, *ErrResponse) {
	id, err := ParseID(GetIDParam(r))
	if err != nil {
		return nil, ErrInvalidRequest(err)
	}

	todo, err := a.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFoundResponse
		}

		return nil, StorageErrResponse(fmt.Errorf("error getting todo %d: %w", id, err))
	}

	return todo, nil
}
