package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/do/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/backup"
	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
	"github.com/bookkeeperapp/bookkeeper-server/internal/watcher"
)

// InboxHandle runs the import inbox. Inbox is nil when the inbox is disabled.
type InboxHandle struct {
	Inbox   *backup.Inbox
	watcher *watcher.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Shutdown implements do.Shutdownable.
func (h *InboxHandle) Shutdown() error {
	if h.Inbox == nil {
		return nil
	}
	h.cancel()
	err := h.watcher.Stop()
	h.wg.Wait()
	return err
}

// ProvideInbox imports files already in the inbox, then watches it for new
// ones until shutdown.
func ProvideInbox(i do.Injector) (*InboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Inbox.Enabled {
		return &InboxHandle{}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	svc := do.MustInvoke[*backup.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	inbox, err := backup.NewInbox(cfg.Inbox.Path, storeHandle.Backend, svc, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	n, err := inbox.Scan(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("scan inbox: %w", err)
	}

	w, err := watcher.New(log.Logger, inbox.Dir(), watcher.Options{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch inbox: %w", err)
	}

	h := &InboxHandle{Inbox: inbox, watcher: w, cancel: cancel}
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		if err := w.Start(ctx); err != nil {
			log.Error("inbox watcher stopped", "error", err)
		}
	}()
	go func() {
		defer h.wg.Done()
		inbox.Run(ctx, w.Events())
	}()

	log.Info("import inbox watching", "path", inbox.Dir(), "imported_at_start", n)
	return h, nil
}
