package handlers

import (
	"log/slog"

	"github.com/suPer8Hu/chat-dashboard/internal/analytics"
	"github.com/suPer8Hu/chat-dashboard/internal/auth"
	"github.com/suPer8Hu/chat-dashboard/internal/chatfeed"
	"github.com/suPer8Hu/chat-dashboard/internal/config"
	"github.com/suPer8Hu/chat-dashboard/internal/settings"
	"github.com/suPer8Hu/chat-dashboard/internal/users"
	"gorm.io/gorm"
)

type Handler struct {
	DB        *gorm.DB
	Cfg       config.Config
	Auth      *auth.Authenticator
	Users     *users.Service
	Settings  *settings.Service
	Feed      *chatfeed.Source
	Analytics *analytics.Aggregator

	logger *slog.Logger
}

func NewHandler(db *gorm.DB, cfg config.Config, authn *auth.Authenticator, us *users.Service, ss *settings.Service, feed *chatfeed.Source, agg *analytics.Aggregator) *Handler {
	return &Handler{
		DB:        db,
		Cfg:       cfg,
		Auth:      authn,
		Users:     us,
		Settings:  ss,
		Feed:      feed,
		Analytics: agg,
		logger:    slog.Default().With("component", "http"),
	}
}
