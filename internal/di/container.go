// Package di provides dependency injection configuration for the Bookkeeper server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/api"
	"github.com/bookkeeperapp/bookkeeper-server/internal/auth"
	"github.com/bookkeeperapp/bookkeeper-server/internal/backup"
	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/di/providers"
	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
	"github.com/bookkeeperapp/bookkeeper-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideWriterLock)
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideBackupService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideInbox)

	return injector
}

// Bootstrap initializes the handler graph without starting the listener.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*api.Server](injector)

	return nil
}

// Start bootstraps the graph, starts the import inbox when enabled and
// starts the HTTP listener.
func Start(injector *do.RootScope) error {
	if err := Bootstrap(injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.InboxHandle](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
