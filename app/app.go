package app

import (
	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-forms/analytics"
	"github.com/mbolis/quick-forms/cache"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
)

// App carries the shared dependencies handed to every route.
type App struct {
	*database.DB
	*oauth.BearerServer
	config.Config

	Reports cache.ReportCache
	Engine  *analytics.Engine
}
