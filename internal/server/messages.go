package server

import (
	"time"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
	jsoniter "github.com/json-iterator/go"
)

const (
	EventGetOnlineUsers = "getOnlineUsers"
	EventNewMessage     = "newMessage"
	EventError          = "error"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ServerMessage struct {
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func OnlineUsersMessage(online []int) *ServerMessage {
	if online == nil {
		online = []int{}
	}

	return &ServerMessage{
		Event:     EventGetOnlineUsers,
		Data:      online,
		Timestamp: Now(),
	}
}

func NewMessageEvent(msg types.Message) *ServerMessage {
	return &ServerMessage{
		Event:     EventNewMessage,
		Data:      msg,
		Timestamp: Now(),
	}
}

func ErrorMessage(text string) *ServerMessage {
	return &ServerMessage{
		Event:     EventError,
		Data:      text,
		Timestamp: Now(),
	}
}

func serializeMessage(msg *ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// clientEvent extracts the event name from a client frame.
func clientEvent(raw []byte) (string, error) {
	v := json.Get(raw, "event")
	if err := v.LastError(); err != nil {
		return "", err
	}
	return v.ToString(), nil
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
