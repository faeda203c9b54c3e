package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendQueueSize  = 256
)

type Client struct {
	id         string
	userId     int
	conn       *websocket.Conn
	chatServer *ChatServer
	log        *logrus.Entry
	send       chan *ServerMessage
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewClient(id string, userId int, conn *websocket.Conn, cs *ChatServer, l *logrus.Logger) *Client {
	return &Client{
		id:         id,
		userId:     userId,
		conn:       conn,
		chatServer: cs,
		log:        l.WithFields(logrus.Fields{"user_id": userId, "conn_id": id}),
		send:       make(chan *ServerMessage, sendQueueSize),
		stop:       make(chan struct{}),
	}
}

func (c *Client) Id() string {
	return c.id
}

func (c *Client) UserId() int {
	return c.userId
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Debug("write exiting")
	}()

	for {
		select {
		case msg := <-c.send:
			bytes, err := serializeMessage(msg)
			if err != nil {
				c.log.WithError(err).Error("failed to serialize message")
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.chatServer.UnregisterClient(c)
		c.log.Debug("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("ws: read")
			}
			break
		}

		c.handleClientMessage(raw)
	}
}

func (c *Client) handleClientMessage(raw []byte) {
	event, err := clientEvent(raw)
	if err != nil {
		c.log.WithError(err).Debug("error parsing message")
		c.queueMessage(ErrorMessage("invalid message format"))
		return
	}

	switch event {
	case EventGetOnlineUsers:
		c.queueMessage(OnlineUsersMessage(c.chatServer.Online()))
	default:
		c.queueMessage(ErrorMessage("unknown event: " + event))
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.WithField("event", msg.Event).Warn("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.WithError(err).Warn("write message")
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}
