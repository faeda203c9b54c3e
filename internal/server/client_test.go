package server

import (
	"testing"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/stats"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func Test_queueMessage(t *testing.T) {
	t.Run("successful queue", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerMessage, 1),
			log:  testutil.TestLogger(t).WithField("conn_id", "c1"),
		}

		res := c.queueMessage(&ServerMessage{})
		assert.True(t, res, "expected queueMessage to return true when channel is not full")

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg, "expected a message to be sent to the client")
		default:
			t.Error("expected a message to be sent to the client, but none was sent")
		}
	})
	t.Run("channel full", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerMessage, 1),
			log:  testutil.TestLogger(t).WithField("conn_id", "c1"),
		}

		c.send <- &ServerMessage{}
		res := c.queueMessage(&ServerMessage{})
		assert.False(t, res, "expected queueMessage to return false when channel is full")
	})
}

func Test_stopClient(t *testing.T) {
	c := &Client{
		stop: make(chan struct{}),
	}

	c.stopClient()
	assert.NotPanics(t, c.stopClient, "expected stopping twice to be safe")

	select {
	case <-c.stop:
	default:
		t.Error("expected stop channel to be closed")
	}
}

func TestNewClient(t *testing.T) {
	cs := newTestChatServer(t, &stats.MockStatsUpdater{})
	c := NewClient("abc", 7, nil, cs, testutil.TestLogger(t))

	assert.Equal(t, "abc", c.Id())
	assert.Equal(t, 7, c.UserId())
	assert.Equal(t, cs, c.chatServer)
	assert.Equal(t, sendQueueSize, cap(c.send))
	assert.Equal(t, 7, c.log.Data["user_id"])
	assert.Equal(t, "abc", c.log.Data["conn_id"])
}

func Test_handleClientMessage(t *testing.T) {
	tcases := []struct {
		name      string
		raw       string
		wantEvent string
		wantData  any
	}{
		{
			name:      "online users request",
			raw:       `{"event":"getOnlineUsers"}`,
			wantEvent: EventGetOnlineUsers,
			wantData:  []int{4, 9},
		},
		{
			name:      "unknown event",
			raw:       `{"event":"typing"}`,
			wantEvent: EventError,
			wantData:  "unknown event: typing",
		},
		{
			name:      "invalid frame",
			raw:       `{`,
			wantEvent: EventError,
			wantData:  "invalid message format",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			su := &stats.MockStatsUpdater{}
			su.On("Incr", mock.Anything).Maybe()
			cs := newTestChatServer(t, su)
			cs.registry.Register(9, "c9")
			cs.registry.Register(4, "c4")

			c := newTestClient(t, cs, "c4", 4)
			c.handleClientMessage([]byte(tc.raw))

			select {
			case msg := <-c.send:
				assert.Equal(t, tc.wantEvent, msg.Event)
				assert.Equal(t, tc.wantData, msg.Data)
			default:
				t.Error("expected a reply to be queued")
			}
		})
	}
}
