package handlers

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"

	"github.com/warcats-game/warcats-backend/models"
)

// Connection represents a WebSocket connection and the wallet it belongs to.
type Connection struct {
	ws     *websocket.Conn
	send   chan []byte
	wallet string
}

// Hub maintains the set of active connections keyed by wallet and relays
// game events to them.
type Hub struct {
	// Registered connections by wallet. One connection per wallet; a new
	// connection for the same wallet replaces the old one.
	connections map[string]*Connection

	register   chan *Connection
	unregister chan *Connection
	relay      chan relayMessage
}

type relayMessage struct {
	wallet  string
	payload []byte
}

var hub = &Hub{
	connections: make(map[string]*Connection),
	register:    make(chan *Connection),
	unregister:  make(chan *Connection),
	relay:       make(chan relayMessage),
}

func (h *Hub) run() {
	for {
		select {
		case connection := <-h.register:
			if old, ok := h.connections[connection.wallet]; ok {
				close(old.send)
			}
			h.connections[connection.wallet] = connection
		case connection := <-h.unregister:
			if current, ok := h.connections[connection.wallet]; ok && current == connection {
				delete(h.connections, connection.wallet)
				close(connection.send)
			}
		case msg := <-h.relay:
			connection, ok := h.connections[msg.wallet]
			if !ok {
				// Recipient offline; the committed state is authoritative,
				// they catch up through the active-game endpoint.
				continue
			}
			select {
			case connection.send <- msg.payload:
			default:
				close(connection.send)
				delete(h.connections, msg.wallet)
			}
		}
	}
}

// Notify delivers an event to the wallet's connection, best effort. A
// delivery failure never affects the already-committed game state.
func (h *Hub) Notify(wallet, event string, payload interface{}) {
	h.send(wallet, models.WsEvent{Event: event, Data: payload})
}

// send marshals the frame and hands it to the hub goroutine, the sole
// owner of connection send channels. Writing to one from any other
// goroutine races the close on reconnect and on the full-buffer drop.
func (h *Hub) send(wallet string, ev models.WsEvent) {
	message, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error marshalling %s event for %s: %v", ev.Event, wallet, err)
		return
	}
	h.relay <- relayMessage{wallet: wallet, payload: message}
}

func init() {
	go hub.run()
}
