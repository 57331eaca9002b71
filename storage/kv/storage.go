package kv

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/calvinmclean/todoapi"
	"github.com/goccy/go-json"
	"github.com/tarmac-project/hord"
)

// DefaultPrefix is used for keys when no prefix is provided
const DefaultPrefix = "todos"

// Storage implements the todoapi.Storage interface using hord.Database for the storage backend. Each Todo is a
// JSON document stored under "<prefix>_<id>". IDs come from a counter stored under "seq:<prefix>"
//
// The counter is only guarded within a single process, so multiple servers must not share one Redis prefix
type Storage struct {
	prefix string
	db     hord.Database

	// mu serializes ID allocation
	mu sync.Mutex
}

var _ todoapi.Storage = &Storage{}

// NewStorage creates a new storage client for Todos. It stores Todos with keys prefixed by 'prefix'
func NewStorage(db hord.Database, prefix string) *Storage {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Storage{prefix: prefix, db: db}
}

func (s *Storage) key(id int64) string {
	return fmt.Sprintf("%s_%d", s.prefix, id)
}

func (s *Storage) seqKey() string {
	return "seq:" + s.prefix
}

// parseKey returns the ID from a Todo key and false for keys that belong to something else
func (s *Storage) parseKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, s.prefix+"_")
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Get will read the Todo by ID and Unmarshal it
func (s *Storage) Get(ctx context.Context, id int64) (*todoapi.Todo, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return s.get(s.key(id))
}

func (s *Storage) get(key string) (*todoapi.Todo, error) {
	dataBytes, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, hord.ErrNil) {
			return nil, todoapi.ErrNotFound
		}
		return nil, unavailable(fmt.Errorf("error getting data: %w", err))
	}

	var result todoapi.Todo
	err = json.Unmarshal(dataBytes, &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing data: %w", err)
	}

	return &result, nil
}

// List reads every key with the prefix and returns the Todos ordered by ID
func (s *Storage) List(ctx context.Context) ([]*todoapi.Todo, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	keys, err := s.db.Keys()
	if err != nil {
		return nil, unavailable(fmt.Errorf("error getting keys: %w", err))
	}

	results := []*todoapi.Todo{}
	for _, key := range keys {
		if _, ok := s.parseKey(key); !ok {
			continue
		}

		result, err := s.get(key)
		if err != nil {
			// deleted concurrently
			if errors.Is(err, todoapi.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("error getting data: %w", err)
		}

		results = append(results, result)
	}

	slices.SortFunc(results, func(a, b *todoapi.Todo) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return results, nil
}

// Create allocates the next ID, then marshals the Todo and writes it to the database
func (s *Storage) Create(ctx context.Context, todo *todoapi.Todo) (*todoapi.Todo, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}

	stored := todo.Copy()
	stored.ID = id

	asBytes, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	err = s.db.Set(s.key(id), asBytes)
	if err != nil {
		return nil, unavailable(fmt.Errorf("error writing data to database: %w", err))
	}

	return stored, nil
}

func (s *Storage) nextID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	data, err := s.db.Get(s.seqKey())
	switch {
	case errors.Is(err, hord.ErrNil):
	case err != nil:
		return 0, unavailable(fmt.Errorf("error reading id sequence: %w", err))
	default:
		current, err = strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("error parsing id sequence %q: %w", string(data), err)
		}
	}

	next := current + 1
	err = s.db.Set(s.seqKey(), []byte(strconv.FormatInt(next, 10)))
	if err != nil {
		return 0, unavailable(fmt.Errorf("error writing id sequence: %w", err))
	}

	return next, nil
}

// DeleteAll deletes every Todo key. The ID sequence is kept so IDs are not reused
func (s *Storage) DeleteAll(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	keys, err := s.db.Keys()
	if err != nil {
		return unavailable(fmt.Errorf("error getting keys: %w", err))
	}

	for _, key := range keys {
		if _, ok := s.parseKey(key); !ok {
			continue
		}

		err = s.db.Delete(key)
		if err != nil {
			return unavailable(fmt.Errorf("error deleting %q: %w", key, err))
		}
	}

	return nil
}

func (s *Storage) check(ctx context.Context) error {
	if s.db == nil {
		return unavailable(errors.New("missing database connection"))
	}
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", todoapi.ErrUnavailable, err)
}
