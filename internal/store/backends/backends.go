// Package backends opens a log store backend by name.
package backends

import (
	"fmt"
	"log/slog"

	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store/sqlite"
)

// Open opens the named backend inside dataPath.
func Open(kind, dataPath string, logger *slog.Logger) (store.Backend, error) {
	path := config.BackendPath(dataPath, kind)
	switch kind {
	case config.BackendBadger:
		return store.New(path, logger)
	case config.BackendSQLite:
		return sqlite.Open(path, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
