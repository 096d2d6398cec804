package server

import (
	"context"
	"encoding/json"
	"net/http"

	"nhooyr.io/websocket"

	"catanrig/internal/game"
)

// WSMessage is the JSON envelope for messages sent by websocket clients and
// for errors sent back to them. State pushes use the feed event format.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.broker == nil {
		writeError(w, http.StatusNotFound, "state stream is disabled")
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // viewers are served from anywhere on the LAN
	})
	if err != nil {
		s.log.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := s.broker.Subscribe()
	defer s.broker.Unsubscribe(events)
	replies := make(chan []byte, 16)

	// Writer goroutine: forward events and replies to the websocket.
	go func() {
		defer cancel()
		for {
			var msg []byte
			select {
			case msg = <-events:
			case msg = <-replies:
			case <-ctx.Done():
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				s.log.Debug("websocket write failed", "error", err)
				return
			}
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.log.Debug("websocket read ended", "error", err)
			break
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWSError(replies, "invalid message")
			continue
		}
		s.handleMessage(replies, msg)
	}
	cancel()
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) handleMessage(replies chan []byte, msg WSMessage) {
	if s.queue == nil {
		sendWSError(replies, "remote actions are disabled")
		return
	}
	switch msg.Type {
	case "action":
		var a game.Action
		if err := json.Unmarshal(msg.Payload, &a); err != nil {
			sendWSError(replies, "invalid action payload")
			return
		}
		if err := s.queue.Submit(a); err != nil {
			sendWSError(replies, err.Error())
			return
		}
		sendWSMsg(replies, "queued", nil)

	case "confirm":
		if err := s.queue.Confirm(); err != nil {
			sendWSError(replies, err.Error())
			return
		}
		sendWSMsg(replies, "queued", nil)

	default:
		sendWSError(replies, "unknown message type: "+msg.Type)
	}
}

func sendWSMsg(send chan []byte, msgType string, payload any) {
	var p json.RawMessage
	if payload != nil {
		p, _ = json.Marshal(payload)
	}
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: p})
	select {
	case send <- msg:
	default:
	}
}

func sendWSError(send chan []byte, message string) {
	sendWSMsg(send, "error", errorPayload{Message: message})
}
