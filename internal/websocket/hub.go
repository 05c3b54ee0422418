// Package websocket fans progress and connectivity updates out to every
// connected browser.
package websocket

import (
	"encoding/json"
	"log"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set. It must run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client; drop it rather than block every other one.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastJSON encodes v and queues it for every client. It never blocks:
// when the queue is full the message is dropped.
func (h *Hub) BroadcastJSON(v any) {
	if h == nil {
		return
	}
	message, err := json.Marshal(v)
	if err != nil {
		log.Printf("websocket: encode broadcast: %v", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
		log.Println("websocket: broadcast queue full, dropping message")
	}
}
