package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/id"
	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
	"github.com/bookkeeperapp/bookkeeper-server/internal/service"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store/backends"
)

// defaultUsername owns the log when no --user is given.
const defaultUsername = "local"

type globalFlags struct {
	configFile string
	envFile    string
	dataPath   string
	backend    string
	username   string
	logLevel   string
	noColor    bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     *logger.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadWith(config.Overrides{
			ConfigFile:     strings.TrimSpace(c.flags.configFile),
			EnvFile:        strings.TrimSpace(c.flags.envFile),
			DataPath:       strings.TrimSpace(c.flags.dataPath),
			StorageBackend: strings.TrimSpace(c.flags.backend),
			LogLevel:       c.flags.logLevel,
		})
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger.New(logger.Config{
			Writer:      os.Stderr,
			Format:      cfg.Logger.Format,
			Environment: cfg.App.Environment,
			Level:       logger.ParseLevel(cfg.Logger.Level),
		})
	})
	return c.config, c.configErr
}

// session is what a command body works against.
type session struct {
	cfg     *config.Config
	backend store.Backend
	user    *domain.User
	log     *logger.Logger
}

func (s *session) load(ctx context.Context) (*service.Session, error) {
	return service.NewSessionService(s.backend, false, s.log.Logger).Load(ctx, s.user.ID)
}

// withRead opens the configured backend for a read-only command.
func (c *commandContext) withRead(ctx context.Context, fn func(context.Context, *session) error) error {
	return c.with(ctx, false, fn)
}

// withWrite is withRead holding the data directory writer lock.
func (c *commandContext) withWrite(ctx context.Context, fn func(context.Context, *session) error) error {
	return c.with(ctx, true, fn)
}

func (c *commandContext) with(ctx context.Context, write bool, fn func(context.Context, *session) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	if write {
		lock, lockErr := store.AcquireWriterLock(cfg.LockPath())
		if lockErr != nil {
			if errors.Is(lockErr, store.ErrLocked) {
				return fmt.Errorf("data directory %s is in use by another writer (is the server running?)", cfg.Storage.DataPath)
			}
			return lockErr
		}
		defer func() { err = errors.Join(err, lock.Release()) }()
	}

	backend, err := backends.Open(cfg.Storage.Backend, cfg.Storage.DataPath, c.logger.Logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	defer func() { err = errors.Join(err, backend.Close()) }()

	user, err := resolveUser(ctx, backend, c.flags.username, write)
	if err != nil {
		return err
	}

	return fn(ctx, &session{cfg: cfg, backend: backend, user: user, log: c.logger})
}

// resolveUser looks the owner up by name. Writers create a password-less
// local account on first use; readers of an unknown user see an empty log.
func resolveUser(ctx context.Context, users store.UserStore, username string, create bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultUsername
	}

	user, err := users.GetUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user %s: %w", username, err)
	}
	if !create {
		return &domain.User{ID: "", Username: username}, nil
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, err
	}
	user = &domain.User{ID: userID, Username: username, CreatedAt: time.Now().UTC()}
	if err := users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, nil
}
