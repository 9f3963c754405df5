package api

import (
	"github.com/bookkeeperapp/bookkeeper-server/internal/backup"
	"github.com/bookkeeperapp/bookkeeper-server/internal/service"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

// Services groups the dependencies handlers call into.
type Services struct {
	Store    store.Backend
	Auth     *service.AuthService
	Sessions *service.SessionService
	Books    *service.BookService
	Stats    *service.StatsService
	Backup   *backup.Service
}
