package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store/backends"
)

// WriterLockHandle holds the data directory lock for the server's lifetime.
type WriterLockHandle struct {
	*store.WriterLock
}

// Shutdown implements do.Shutdownable.
func (h *WriterLockHandle) Shutdown() error {
	return h.Release()
}

// ProvideWriterLock takes the single-writer lock on the data directory.
func ProvideWriterLock(i do.Injector) (*WriterLockHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	lock, err := store.AcquireWriterLock(cfg.LockPath())
	if err != nil {
		return nil, err
	}

	log.Info("Writer lock acquired", "path", cfg.LockPath())
	return &WriterLockHandle{WriterLock: lock}, nil
}

// StoreHandle wraps the configured backend with shutdown capability.
type StoreHandle struct {
	store.Backend
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured log store backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	_ = do.MustInvoke[*WriterLockHandle](i)

	backend, err := backends.Open(cfg.Storage.Backend, cfg.Storage.DataPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "backend", backend.Name(), "path", cfg.StorePath())
	return &StoreHandle{Backend: backend}, nil
}
