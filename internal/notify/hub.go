// Package notify pushes application change events to a student's open
// websocket connections so dashboards can refresh without polling.
package notify

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

type userMessage struct {
	userID uuid.UUID
	data   []byte
}

type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	stopOnce   sync.Once
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan userMessage, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, set := range h.clients {
				for client := range set {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				set, ok := h.clients[client.userID]
				if !ok {
					set = make(map[*Client]bool)
					h.clients[client.userID] = set
				}
				set[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.userID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					client.Close()
				}
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[msg.userID] {
				client.Send(msg.data)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop gracefully shuts down the hub and closes every client.
// It blocks until Run has exited.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ConnectionCount returns how many live connections a user has.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// PublishApplicationChanged queues an APPLICATION_CHANGED event for every
// connection of userID. Events are dropped when the queue is full.
func (h *Hub) PublishApplicationChanged(userID, applicationID uuid.UUID, change string) {
	msg, err := NewMessage(MessageTypeApplicationChanged, ApplicationChangedPayload{
		ApplicationID: applicationID,
		Change:        change,
	})
	if err != nil {
		log.Printf("ERROR [notify.Publish] failed to build message: %v", err)
		return
	}
	h.publish(userID, msg)
}

func (h *Hub) publish(userID uuid.UUID, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ERROR [notify.Publish] failed to marshal message: %v", err)
		return
	}

	select {
	case h.broadcast <- userMessage{userID: userID, data: data}:
	case <-h.done:
	default:
		log.Printf("WARN [notify.Publish] queue full, dropping %s for user %s", msg.Type, userID)
	}
}
