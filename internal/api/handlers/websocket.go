package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/dom/college-tracker/internal/api/middleware"
	"github.com/dom/college-tracker/internal/notify"
	"github.com/dom/college-tracker/internal/service"
	ws "github.com/gorilla/websocket"
	"github.com/gorilla/sessions"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the token, not the origin, authenticates the socket
	},
}

type WebSocketHandler struct {
	hub          *notify.Hub
	resolver     *service.SessionResolver
	sessionStore sessions.Store
}

func NewWebSocketHandler(hub *notify.Hub, resolver *service.SessionResolver, sessionStore sessions.Store) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		resolver:     resolver,
		sessionStore: sessionStore,
	}
}

// Handle upgrades an authenticated request. Browsers cannot set headers on a
// websocket handshake, so ?token= carries the bearer token; the session
// cookie is the fallback.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	cred := middleware.Credential(r, h.sessionStore)
	if token := r.URL.Query().Get("token"); token != "" {
		cred = service.Credential{Transport: service.TransportBearer, Token: token}
	}

	user, err := h.resolver.Resolve(r.Context(), cred)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			log.Printf("ERROR [handlers.WebSocket] failed to resolve session: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := notify.NewClient(h.hub, conn, user.ID)
	h.hub.Register(client)
	client.Greet()

	go client.WritePump()
	go client.ReadPump()
}
