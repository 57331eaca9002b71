package todoapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Todo is the only resource served by the API. Completed and URL are optional and stay nil in storage
// when they are not provided. Defaults are only applied when rendering a response
type Todo struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Completed *bool   `json:"completed"`
	URL       *string `json:"url"`
}

var _ render.Renderer = &Todo{}
var _ render.Binder = &Todo{}

// Validate checks the user-provided fields of the Todo. URL is free-form text
func (t *Todo) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Title, validation.Required, validation.By(notBlank)),
	)
}

// notBlank rejects strings that only contain whitespace
func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}

// Bind is called after decoding the request body. IDs are assigned by storage, so they
// cannot be provided by the client
func (t *Todo) Bind(r *http.Request) error {
	if r.Method == http.MethodPost && t.ID != 0 {
		return errors.New("unable to manually set id")
	}

	return t.Validate()
}

// Render fills in defaults for optional fields that were not stored
func (t *Todo) Render(_ http.ResponseWriter, _ *http.Request) error {
	t.applyDefaults()
	return nil
}

// WithDefaults returns a copy of the Todo with defaults set for the optional fields
func (t *Todo) WithDefaults() *Todo {
	out := t.Copy()
	out.applyDefaults()
	return out
}

func (t *Todo) applyDefaults() {
	if t.Completed == nil {
		t.Completed = new(bool)
	}
	if t.URL == nil {
		t.URL = new(string)
	}
}

// Copy returns a deep copy so optional fields are not shared between callers
func (t *Todo) Copy() *Todo {
	out := &Todo{ID: t.ID, Title: t.Title}
	if t.Completed != nil {
		completed := *t.Completed
		out.Completed = &completed
	}
	if t.URL != nil {
		url := *t.URL
		out.URL = &url
	}
	return out
}

// IsCompleted returns the value of Completed, defaulting to false
func (t *Todo) IsCompleted() bool {
	return t.Completed != nil && *t.Completed
}

func (t *Todo) String() string {
	return fmt.Sprintf("Todo(%d, %q)", t.ID, t.Title)
}

// TodoList renders as a JSON array of Todos
type TodoList []*Todo

func (tl TodoList) Render(w http.ResponseWriter, r *http.Request) error {
	for _, item := range tl {
		err := item.Render(w, r)
		if err != nil {
			return fmt.Errorf("error rendering item: %w", err)
		}
	}
	return nil
}
