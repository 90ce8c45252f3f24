package web

import (
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yksanjo/chat-app-tcp/internal/chat"
)

// WSHandler upgrades HTTP connections and bridges them to the chat
// connection handler. Each text frame carries the same newline-framed
// lines the TCP transport uses, so both kinds of client share one
// protocol and one registry.
type WSHandler struct {
	handler *chat.Handler
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(handler *chat.Handler, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{handler: handler, log: logger}
}

// Serve upgrades the request and blocks until the chat session ends.
// GET /ws
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	stream := websocket.NetConn(c.Request.Context(), conn, websocket.MessageText)
	h.handler.Handle(stream, c.ClientIP())

	conn.Close(websocket.StatusNormalClosure, "closing")
}
