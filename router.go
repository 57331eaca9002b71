package todoapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Route creates API routes on the given router
func (a *API) Route(r chi.Router) error {
	if a.storage == nil {
		return fmt.Errorf("missing storage")
	}

	a.DefaultMiddleware(r)
	r.Use(a.middlewares...)

	r.NotFound(Handler(func(http.ResponseWriter, *http.Request) render.Renderer {
		return ErrNotFoundResponse
	}))
	r.MethodNotAllowed(Handler(func(http.ResponseWriter, *http.Request) render.Renderer {
		return ErrMethodNotAllowedResponse
	}))

	r.Get("/", a.greet)

	if a.mcpConfig.Enabled {
		handler, err := a.MCPHandler()
		if err != nil {
			return fmt.Errorf("error creating MCP handler: %w", err)
		}
		r.Handle(a.mcpConfig.Path, handler)
	}

	r.Route(a.base, func(r chi.Router) {
		r.Get("/", a.GetAll())
		r.Post("/", a.Post())
		r.Delete("/", a.DeleteAll())

		r.With(a.todoExistsMiddleware).Get(fmt.Sprintf("/{%s}", IDParamKey), a.Get())
	})

	return nil
}

// Router creates a new router with API routes
func (a *API) Router() (chi.Router, error) {
	r := chi.NewRouter()
	err := a.Route(r)
	return r, err
}

func (a *API) greet(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, greeting)
}

// Get responds with the Todo that was read by todoExistsMiddleware
func (a *API) Get() http.HandlerFunc {
	return Handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		todo, err := GetTodoFromContext(r.Context())
		if err != nil {
			GetLoggerFromContext(r.Context()).Error("error getting todo from context", "error", err)
			return InternalServerError(err)
		}

		render.Status(r, http.StatusOK)

		return todo
	})
}

// GetAll responds with a JSON array of all Todos
func (a *API) GetAll() http.HandlerFunc {
	return Handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		logger := GetLoggerFromContext(r.Context())

		todos, err := a.storage.List(r.Context())
		if err != nil {
			logger.Error("error getting todos", "error", err)
			return StorageErrResponse(err)
		}

		logger.Debug("responding with todos", "count", len(todos))

		render.Status(r, http.StatusOK)

		return TodoList(todos)
	})
}

// Post creates a Todo from the request body and responds with the stored Todo
func (a *API) Post() http.HandlerFunc {
	return a.ReadRequestBodyAndDo(func(r *http.Request, todo *Todo) (*Todo, *ErrResponse) {
		logger := GetLoggerFromContext(r.Context())

		logger.Info("storing todo", "todo", todo)
		created, err := a.storage.Create(r.Context(), todo)
		if err != nil {
			logger.Error("error storing todo", "error", err)
			return nil, StorageErrResponse(err)
		}

		render.Status(r, http.StatusOK)

		return created, nil
	})
}

// DeleteAll removes every Todo and responds with an empty body
func (a *API) DeleteAll() http.HandlerFunc {
	return Handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		logger := GetLoggerFromContext(r.Context())

		logger.Info("deleting all todos")

		err := a.storage.DeleteAll(r.Context())
		if err != nil {
			logger.Error("error deleting todos", "error", err)
			return StorageErrResponse(err)
		}

		w.WriteHeader(http.StatusOK)
		return nil
	})
}
