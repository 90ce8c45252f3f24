package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yksanjo/chat-app-tcp/internal/chat"
)

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	registry *chat.Registry
	log      *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(registry *chat.Registry, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		registry: registry,
		log:      logger,
	}
}

// RosterResponse represents the online-users response body.
type RosterResponse struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Users returns the sorted list of online usernames.
// GET /api/users
func (h *APIHandlers) Users(c *gin.Context) {
	users := h.registry.Roster()
	c.JSON(http.StatusOK, RosterResponse{Count: len(users), Users: users})
}
