package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/id"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
	"github.com/bookkeeperapp/bookkeeper-server/internal/watcher"
)

// Subdirectories of the inbox that settled files are moved into.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// ErrUnknownOwner indicates a backup whose manifest names no existing user.
var ErrUnknownOwner = errors.New("backup owner not found")

// Inbox imports backup documents dropped into a directory. The owner is
// taken from the manifest: the username when present, the user ID otherwise.
type Inbox struct {
	dir    string
	users  store.UserStore
	svc    *Service
	logger *slog.Logger
	now    func() time.Time
}

// NewInbox creates the inbox directory and its processed and failed
// subdirectories.
func NewInbox(dir string, users store.UserStore, svc *Service, logger *slog.Logger) (*Inbox, error) {
	for _, d := range []string{dir, filepath.Join(dir, ProcessedDir), filepath.Join(dir, FailedDir)} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return nil, fmt.Errorf("create inbox directory: %w", err)
		}
	}
	return &Inbox{dir: dir, users: users, svc: svc, logger: logger, now: time.Now}, nil
}

// Dir returns the watched directory.
func (b *Inbox) Dir() string {
	return b.dir
}

// Scan processes files already sitting in the inbox and returns how many
// were imported.
func (b *Inbox) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	imported := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		if e.IsDir() || !isBackupFile(e.Name()) {
			continue
		}
		if _, err := b.Process(ctx, filepath.Join(b.dir, e.Name())); err == nil {
			imported++
		}
	}
	return imported, nil
}

// Run processes added files from events until ctx is done or the channel
// closes.
func (b *Inbox) Run(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type != watcher.EventAdded || !isBackupFile(ev.Path) {
				continue
			}
			_, _ = b.Process(ctx, ev.Path) //nolint:errcheck // Process logs and files failures
		}
	}
}

// Process imports one file and moves it to processed/ on success or to
// failed/ otherwise.
func (b *Inbox) Process(ctx context.Context, path string) (*ImportResult, error) {
	importID, err := id.Readable(id.PrefixImport, 8)
	if err != nil {
		return nil, err
	}
	log := b.logger.With("import_id", importID, "path", path)

	res, err := b.importFile(ctx, path)
	dest := FailedDir
	if err == nil {
		dest = ProcessedDir
	}

	moved, moveErr := b.move(path, dest)
	if moveErr != nil {
		log.Error("failed to move inbox file", "error", moveErr)
	}
	if err != nil {
		log.Warn("inbox import failed", "moved_to", moved, "error", err)
		return nil, err
	}

	log.Info("inbox import complete",
		"export_id", res.Manifest.ExportID,
		"days", res.Days,
		"rows", res.Rows,
	)
	return res, nil
}

func (b *Inbox) importFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	//#nosec G304 -- path is inside the configured inbox
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inbox file: %w", err)
	}
	doc, err := decode(data, f)
	if err != nil {
		return nil, err
	}

	owner, err := b.owner(ctx, doc.Manifest)
	if err != nil {
		return nil, err
	}
	return b.svc.Import(ctx, bytes.NewReader(data), owner.ID, ImportOptions{Format: f})
}

func (b *Inbox) owner(ctx context.Context, m Manifest) (*domain.User, error) {
	var (
		user *domain.User
		err  error
		name string
	)
	switch {
	case m.Username != "":
		name = m.Username
		user, err = b.users.GetUserByUsername(ctx, m.Username)
	case m.UserID != "":
		name = m.UserID
		user, err = b.users.GetUser(ctx, m.UserID)
	default:
		return nil, fmt.Errorf("%w: manifest names no user", ErrUnknownOwner)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOwner, name)
	}
	return user, err
}

func (b *Inbox) move(path, sub string) (string, error) {
	name := b.now().UTC().Format("20060102-150405") + "-" + filepath.Base(path)
	dest := filepath.Join(b.dir, sub, name)
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func isBackupFile(path string) bool {
	_, err := FormatForPath(path)
	return err == nil && filepath.Ext(path) != ""
}
