package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"recruithub/internal/domain"
	"recruithub/pkg/events"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is one live connection to the messaging core. Outbound helpers
// emit client events; the read loop routes server events into the State.
type Session struct {
	conn  *websocket.Conn
	state *State

	// OnError receives server-reported event failures.
	OnError func(message string)
}

// Dial connects and authenticates via the token query parameter.
func Dial(baseURL, token string, state *State) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Session{conn: conn, state: state}, nil
}

func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) emit(eventType string, payload interface{}) error {
	return s.conn.WriteJSON(events.New(eventType, payload))
}

func (s *Session) JoinRoom(candidateID uuid.UUID) error {
	return s.emit(events.TypeJoinRoom, events.RoomPayload{CandidateID: candidateID})
}

func (s *Session) LeaveRoom(candidateID uuid.UUID) error {
	return s.emit(events.TypeLeaveRoom, events.RoomPayload{CandidateID: candidateID})
}

// SendMessage records the optimistic entry and emits the event. The returned
// temp id identifies the provisional entry until the echo lands.
func (s *Session) SendMessage(candidateID uuid.UUID, senderName, content string) (string, error) {
	tempID := s.state.AppendLocal(candidateID, senderName, content)
	err := s.emit(events.TypeSendMessage, events.SendMessagePayload{CandidateID: candidateID, Content: content})
	return tempID, err
}

func (s *Session) SetTyping(candidateID uuid.UUID, isTyping bool) error {
	return s.emit(events.TypeTyping, events.TypingPayload{CandidateID: candidateID, IsTyping: isTyping})
}

func (s *Session) MarkNotificationRead(notificationID uuid.UUID) error {
	return s.emit(events.TypeMarkNotificationRead, events.MarkNotificationReadPayload{NotificationID: notificationID})
}

// Run reads server events until the connection drops, folding each into the
// State. Blocks; callers run it on its own goroutine.
func (s *Session) Run() error {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := s.dispatch(raw); err != nil && s.OnError != nil {
			s.OnError(err.Error())
		}
	}
}

type inboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Session) dispatch(raw []byte) error {
	var evt inboundEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return err
	}

	switch evt.Type {
	case events.TypeNewMessage:
		var msg domain.Message
		if err := json.Unmarshal(evt.Payload, &msg); err != nil {
			return err
		}
		s.state.ApplyMessage(msg)

	case events.TypeMessageUpdated:
		var msg domain.Message
		if err := json.Unmarshal(evt.Payload, &msg); err != nil {
			return err
		}
		s.state.ApplyMessageUpdated(msg)

	case events.TypeMessageDeleted:
		var p events.MessageDeletedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		s.state.ApplyMessageDeleted(p.MessageID, p.CandidateID)

	case events.TypeNewNotification:
		var p events.NewNotificationPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		s.state.ApplyNotification(p.Notification)

	case events.TypeNotificationRead:
		var p events.NotificationReadPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		s.state.MarkNotificationRead(p.NotificationID)

	case events.TypeUserTyping:
		var p events.UserTypingPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		s.state.ApplyTyping(p.UserID, p.UserName, p.CandidateID, p.IsTyping)

	case events.TypeError:
		var p events.ErrorPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		if s.OnError != nil {
			s.OnError(p.Message)
		}
	}
	return nil
}
