package extensions

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/calvinmclean/todoapi"
	"github.com/calvinmclean/todoapi/storage/kv"
	"github.com/calvinmclean/todoapi/storage/sqldb"
	"github.com/spf13/pflag"
	"github.com/tarmac-project/hord"
	"github.com/tarmac-project/hord/drivers/hashmap"
	"github.com/tarmac-project/hord/drivers/redis"
)

// Storage selects and connects a storage backend for the API from configuration. A database URL takes
// precedence, then Redis, then a storage file. If nothing is configured, the API keeps its default
// in-memory storage
type Storage struct {
	SQLConfig sqldb.Config

	// Optional key to use as a prefix when storing in key-value store. If empty, kv.DefaultPrefix is used
	StorageKeyPrefix string

	// KVConnectionConfig has connection data for KV store. Optional if DB is provided
	KVConnectionConfig

	// DB is the KV database connection. It is created if not provided. This is useful if multiple APIs share
	// a storage backend
	DB hord.Database
}

var _ todoapi.Extension = &Storage{}

type KVConnectionConfig struct {
	// Filename to write JSON data to
	Filename string

	// Host of Redis instance
	RedisHost string
	// Password for Redis instance
	RedisPassword string
}

// AddFlags registers flags for each configuration. Defaults are read from DATABASE_URL, STORAGE_FILE,
// REDIS_HOST and REDIS_PASSWORD
func (s *Storage) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&s.SQLConfig.URL, "database-url", os.Getenv("DATABASE_URL"), "SQL database URL: postgres://... or sqlite://<path>")
	flags.IntVar(&s.SQLConfig.MaxOpenConns, "max-open-conns", sqldb.DefaultMaxOpenConns, "maximum open SQL connections in the pool")
	flags.DurationVar(&s.SQLConfig.QueryTimeout, "query-timeout", sqldb.DefaultQueryTimeout, "timeout for each SQL operation, including waiting for a connection")
	flags.StringVar(&s.Filename, "storage-file", os.Getenv("STORAGE_FILE"), "file used to persist key-value storage")
	flags.StringVar(&s.RedisHost, "redis-host", os.Getenv("REDIS_HOST"), "Redis host for key-value storage")
	flags.StringVar(&s.RedisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password for key-value storage")
}

// Apply connects to the configured backend, sets it as the API's storage and registers a shutdown hook to
// close the connection
func (s *Storage) Apply(api *todoapi.API) error {
	if s.SQLConfig.URL != "" {
		return s.applySQL(api)
	}

	db := s.DB
	if db == nil {
		var err error
		db, err = s.CreateDB()
		if err != nil {
			return fmt.Errorf("error creating database connection: %w", err)
		}
	}
	if db == nil {
		slog.Info("using in-memory storage")
		return nil
	}

	slog.Info("using key-value storage")
	api.SetStorage(kv.NewStorage(db, s.StorageKeyPrefix))
	api.RegisterOnShutdown(func() error {
		db.Close()
		return nil
	})

	return nil
}

func (s *Storage) applySQL(api *todoapi.API) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := sqldb.Open(ctx, s.SQLConfig)
	if err != nil {
		return fmt.Errorf("error connecting to SQL database: %w", err)
	}

	slog.Info("using SQL storage")
	api.SetStorage(store)
	api.RegisterOnShutdown(store.Close)

	return nil
}

// CreateDB creates a KV database from the connection config. It returns nil if nothing is configured
func (h KVConnectionConfig) CreateDB() (hord.Database, error) {
	switch {
	case h.RedisHost != "":
		server := h.RedisHost
		if !strings.Contains(server, ":") {
			server += ":6379"
		}
		return kv.NewRedisDB(redis.Config{
			Server:   server,
			Password: h.RedisPassword,
		})
	case h.Filename != "":
		return kv.NewFileDB(hashmap.Config{
			Filename: h.Filename,
		})
	default:
		return nil, nil
	}
}
