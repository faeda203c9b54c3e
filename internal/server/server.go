package server

import (
	"context"
	"errors"
	"sync"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/stats"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
	"github.com/aidarkhanov/nanoid/v2"
	"github.com/sirupsen/logrus"
)

const connIdAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var ErrServerStopped = errors.New("chat server stopped")

type stopReq struct {
	done chan struct{}
}

type ChatServer struct {
	log            *logrus.Logger
	registry       *Registry
	stats          stats.StatsProvider
	clients        map[string]*Client
	clientsLock    sync.RWMutex
	registerChan   chan *Client
	deregisterChan chan *Client
	stop           chan stopReq
	done           chan struct{}
}

func NewChatServer(logger *logrus.Logger, registry *Registry, su stats.StatsProvider) (*ChatServer, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}

	cs := &ChatServer{
		log:            logger,
		registry:       registry,
		stats:          su,
		clients:        make(map[string]*Client),
		registerChan:   make(chan *Client),
		deregisterChan: make(chan *Client),
		stop:           make(chan stopReq),
		done:           make(chan struct{}),
	}

	su.RegisterMetric(stats.ActiveClients)
	su.RegisterMetric(stats.MessagesRelayed)
	su.RegisterMetric(stats.OnlineBroadcasts)

	registry.OnChange(cs.broadcastOnline)

	return cs, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case c := <-cs.registerChan:
			cs.log.WithFields(logrus.Fields{"user_id": c.userId, "conn_id": c.id}).Info("registering connection")
			cs.addClient(c)
			cs.registry.Register(c.userId, c.id)
		case c := <-cs.deregisterChan:
			cs.log.WithFields(logrus.Fields{"user_id": c.userId, "conn_id": c.id}).Info("removing connection")
			cs.removeClient(c)
			cs.registry.UnregisterConn(c.userId, c.id)
			c.stopClient()
		case req := <-cs.stop:
			cs.log.Info("stopping clients")
			cs.clientsLock.RLock()
			for _, c := range cs.clients {
				c.stopClient()
			}
			cs.clientsLock.RUnlock()

			close(cs.done)
			close(req.done)
			return
		}
	}
}

// RegisterClient hands a new connection to the run loop, which records it
// in the registry and broadcasts the online list.
func (cs *ChatServer) RegisterClient(c *Client) error {
	select {
	case cs.registerChan <- c:
		return nil
	case <-cs.done:
		return ErrServerStopped
	}
}

func (cs *ChatServer) UnregisterClient(c *Client) {
	select {
	case cs.deregisterChan <- c:
	case <-cs.done:
		c.stopClient()
	}
}

// Relay pushes a stored message to the receiver's live connection. It
// reports whether the message was queued; a receiver without a connection
// or with a full send queue is skipped.
func (cs *ChatServer) Relay(receiverId int, msg types.Message) bool {
	connId, ok := cs.registry.Lookup(receiverId)
	if !ok {
		return false
	}

	c, ok := cs.getClient(connId)
	if !ok {
		return false
	}

	if !c.queueMessage(NewMessageEvent(msg)) {
		return false
	}

	cs.stats.Incr(stats.MessagesRelayed)
	return true
}

func (cs *ChatServer) Online() []int {
	return cs.registry.Online()
}

func (cs *ChatServer) NewConnectionId() (string, error) {
	return nanoid.GenerateString(connIdAlphabet, 10)
}

func (cs *ChatServer) broadcastOnline(online []int) {
	msg := OnlineUsersMessage(online)

	cs.clientsLock.RLock()
	defer cs.clientsLock.RUnlock()

	for _, c := range cs.clients {
		c.queueMessage(msg)
	}

	cs.stats.Incr(stats.OnlineBroadcasts)
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	cs.clients[c.id] = c
	cs.stats.Incr(stats.ActiveClients)
}

func (cs *ChatServer) removeClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	if cur, ok := cs.clients[c.id]; ok && cur == c {
		delete(cs.clients, c.id)
		cs.stats.Decr(stats.ActiveClients)
	}
}

func (cs *ChatServer) getClient(connId string) (*Client, bool) {
	cs.clientsLock.RLock()
	defer cs.clientsLock.RUnlock()
	c, ok := cs.clients[connId]
	return c, ok
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Info("received shutdown signal")

	req := stopReq{done: make(chan struct{})}
	select {
	case cs.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
