package server

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"recruithub/pkg/events"
	"recruithub/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Client represents a single authenticated WebSocket connection. A user may
// hold several at once (multiple tabs); each has its own send queue and room
// set.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   uuid.UUID
	userName string
	clientID string

	// rooms is this connection's view of its memberships; mutated only under
	// the hub lock.
	rooms map[uuid.UUID]bool

	sendClosed int32
	logger     *logger.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, userName string, log *logger.Logger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		userName: userName,
		clientID: uuid.New().String(),
		rooms:    make(map[uuid.UUID]bool),
		logger:   log,
	}
}

type inboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (c *Client) readPump() {
	defer func() {
		// Closing the connection is the only cancellation primitive; the
		// unregister path runs cleanup exactly once even on abrupt failure.
		c.hub.Unregister(c)
		c.closeConn()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Errorf("websocket unexpected close user=%s: %v", c.userID, err)
			}
			return
		}
		if err := c.handleEvent(raw); err != nil {
			// A failed event aborts only itself; the connection stays usable.
			c.SendError(err.Error())
		}
	}
}

func (c *Client) handleEvent(raw []byte) error {
	var evt inboundEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return err
	}

	switch evt.Type {
	case events.TypeJoinRoom:
		var p events.RoomPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		c.hub.Join(c, p.CandidateID)
		return nil

	case events.TypeLeaveRoom:
		var p events.RoomPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		c.hub.Leave(c, p.CandidateID)
		return nil

	case events.TypeSendMessage:
		var p events.SendMessagePayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		if c.hub.chat == nil {
			return nil
		}
		// The broadcast doubles as the acknowledgement: the sender's own
		// connection receives the echoed message from the room fan-out.
		_, err := c.hub.chat.SendMessage(context.Background(), c.userID, p.CandidateID, p.Content)
		return err

	case events.TypeTyping:
		var p events.TypingPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		c.hub.HandleTyping(c, p.CandidateID, p.IsTyping)
		return nil

	case events.TypeMarkNotificationRead:
		var p events.MarkNotificationReadPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		if c.hub.notifications == nil {
			return nil
		}
		n, err := c.hub.notifications.MarkRead(context.Background(), p.NotificationID, c.userID)
		if err != nil {
			return err
		}
		c.SendEvent(events.New(events.TypeNotificationRead, events.NotificationReadPayload{NotificationID: n.ID}))
		return nil

	default:
		c.logger.Warnf("unknown event type %q user=%s", evt.Type, c.userID)
		return nil
	}
}

// SendEvent queues an event for this connection only.
func (c *Client) SendEvent(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Errorf("marshal event %s: %v", event.Type, err)
		return
	}
	c.hub.enqueue(c, data)
}

// SendError reports a failure to this connection without touching anyone
// else's stream.
func (c *Client) SendError(message string) {
	c.SendEvent(events.New(events.TypeError, events.ErrorPayload{Message: message}))
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) closeSend() {
	if atomic.CompareAndSwapInt32(&c.sendClosed, 0, 1) {
		close(c.send)
	}
}

func (c *Client) closeConn() {
	if c.conn != nil {
		c.conn.Close()
	}
}
