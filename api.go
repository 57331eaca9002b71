package todoapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxBodyBytes    = int64(1 << 20)
	defaultShutdownTimeout = 10 * time.Second

	greeting = "Hello world!!"
)

// API encapsulates all handlers and other pieces of code required to serve Todos from the provided Storage
type API struct {
	base string

	middlewares chi.Middlewares
	storage     Storage

	server *http.Server
	quit   chan os.Signal
	done   chan struct{}

	doneOnce   sync.Once
	onShutdown []func() error

	maxBodyBytes    int64
	shutdownTimeout time.Duration

	mcpConfig MCPConfig

	cliArgs cliArgs
}

// NewAPI initializes an API that serves Todos under /todos. It uses MemoryStorage until SetStorage is called
func NewAPI() *API {
	return &API{
		base:            "/todos",
		storage:         NewMemoryStorage(),
		quit:            make(chan os.Signal, 1),
		done:            make(chan struct{}),
		maxBodyBytes:    defaultMaxBodyBytes,
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// Base returns the API's base path
func (a *API) Base() string {
	return a.base
}

// SetStorage sets a custom storage interface for the API
func (a *API) SetStorage(s Storage) *API {
	a.storage = s
	return a
}

// Storage returns the storage interface for the API so it can be used in custom routes or other use cases
func (a *API) Storage() Storage {
	return a.storage
}

// SetMaxBodyBytes overrides the default limit of 1 MiB for request bodies
func (a *API) SetMaxBodyBytes(n int64) *API {
	a.maxBodyBytes = n
	return a
}

// AddMiddlewares appends chi.Middlewares to existing middlewares
func (a *API) AddMiddlewares(m chi.Middlewares) *API {
	a.middlewares = append(a.middlewares, m...)
	return a
}

// RegisterOnShutdown adds a function that runs after the server stops. This is used to close storage connections
func (a *API) RegisterOnShutdown(f func() error) *API {
	a.onShutdown = append(a.onShutdown, f)
	return a
}

// Client returns a new Client based on the API's configuration. It is a shortcut for NewClient
func (a *API) Client(addr string) *Client {
	return NewClient(addr, a.base)
}

// Serve will serve the API on the given address until it receives SIGINT or SIGTERM or Stop is called
func (a *API) Serve(address string) error {
	router, err := a.Router()
	if err != nil {
		return fmt.Errorf("error creating router: %w", err)
	}

	a.server = &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signal.Notify(a.quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(a.quit)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		slog.Info("starting server", "address", address)
		err := a.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-a.quit:
		case <-ctx.Done():
			return nil
		}

		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		err := a.server.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})

	err = g.Wait()
	err = errors.Join(err, a.runShutdownHooks())

	a.doneOnce.Do(func() { close(a.done) })

	return err
}

func (a *API) runShutdownHooks() error {
	var errs []error
	for _, f := range a.onShutdown {
		err := f()
		if err != nil {
			slog.Error("error running shutdown hook", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop will stop the API and wait for Serve to return
func (a *API) Stop() {
	a.quit <- os.Interrupt
	<-a.done
}

// Done returns a channel that's closed when the API stops, similar to context.Done()
func (a *API) Done() <-chan struct{} {
	return a.done
}
