package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"cabinet-status-backend/internal/session"
	"cabinet-status-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	session *session.Session
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, sess *session.Session, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		session: sess,
		webpush: webpushOptions,
	}
}
