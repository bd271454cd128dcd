package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/warcats-game/warcats-backend/game"
	"github.com/warcats-game/warcats-backend/responses"
	"github.com/warcats-game/warcats-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var gameEngine *game.Engine

// Configure wires the action engine into the handlers package. Must be
// called once before the router starts serving.
func Configure(e *game.Engine) {
	gameEngine = e
}

func WsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tokenStr := vars["token"]

	claims, err := ValidateToken(tokenStr)
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Error validating token."})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	connection := &Connection{send: make(chan []byte, 256), ws: conn, wallet: claims.Wallet}
	hub.register <- connection
	log.Printf("Wallet %s connected", claims.Wallet)

	defer func() {
		hub.unregister <- connection
	}()

	go connection.writePump()
	connection.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		hub.unregister <- c
		c.ws.Close()
		log.Printf("Wallet %s disconnected", c.wallet)
	}()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from wallet %s: %v", c.wallet, err)
			break
		}
		processMessage(c, message)
	}
}

func (c *Connection) writePump() {
	defer func() {
		c.ws.Close()
	}()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("error writing message: %v", err)
			break
		}
	}
}
