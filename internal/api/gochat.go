package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/auth"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/billing"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/cache"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/config"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/friends"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/media"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/server"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/stats"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
	"github.com/teris-io/shortid"
)

type GoChatApp struct {
	log             *logrus.Logger
	db              database.GoChatRepository
	mux             *http.Server
	cs              *server.ChatServer
	stats           stats.StatsProvider
	sessions        *auth.Issuer
	friends         *friends.Manager
	users           cache.UserCache
	uploader        media.Uploader
	billing         billing.Provider
	validate        *validator.Validate
	allowedOrigins  []string
	generateShortId func() (string, error)
}

type Option func(*GoChatApp)

func WithUserCache(c cache.UserCache) Option {
	return func(s *GoChatApp) { s.users = c }
}

func WithUploader(u media.Uploader) Option {
	return func(s *GoChatApp) { s.uploader = u }
}

func WithBilling(p billing.Provider) Option {
	return func(s *GoChatApp) { s.billing = p }
}

func NewGoChatApp(mux *http.ServeMux, logger *logrus.Logger, cs *server.ChatServer, db database.GoChatRepository, su stats.StatsProvider, cfg *config.Config, opts ...Option) *GoChatApp {
	s := &GoChatApp{
		log:             logger,
		db:              db,
		cs:              cs,
		stats:           su,
		sessions:        auth.NewIssuer(cfg.SigningKey, auth.DefaultExpiration, cfg.SecureCookies),
		friends:         friends.NewManager(db, logger),
		users:           cache.NopUserCache{},
		uploader:        media.Disabled{},
		billing:         billing.Disabled{},
		validate:        newValidator(),
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	for _, opt := range opts {
		opt(s)
	}

	if su != nil {
		su.RegisterMetric(stats.AccountsCreated)
		su.RegisterMetric(stats.MessagesStored)
		su.RegisterMetric(stats.CheckoutsCompleted)
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)

	mux.HandleFunc("POST /api/auth/signup", s.signup)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/logout", s.logout)
	mux.Handle("PUT /api/auth/profile", s.authMiddleware(s.updateProfile))
	mux.Handle("GET /api/auth/check", s.authMiddleware(s.checkAuth))

	mux.Handle("POST /api/users/{id}/add-friend", s.authMiddleware(s.sendFriendRequest))
	mux.Handle("POST /api/users/{id}/accept-friend", s.authMiddleware(s.acceptFriendRequest))
	mux.Handle("GET /api/users/friends", s.authMiddleware(s.getFriends))
	mux.Handle("GET /api/users/requests", s.authMiddleware(s.getFriendRequests))
	mux.Handle("GET /api/users/search", s.authMiddleware(s.searchUsers))

	mux.Handle("GET /api/messages/users", s.authMiddleware(s.getSidebarUsers))
	mux.Handle("GET /api/messages/{id}", s.authMiddleware(s.getMessages))
	mux.Handle("POST /api/messages/send/{id}", s.authMiddleware(s.sendMessage))

	mux.Handle("POST /api/subscriptions/create-checkout-session", s.authMiddleware(s.createCheckoutSession))
	mux.HandleFunc("POST /api/webhooks/stripe", s.stripeWebhook)

	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *GoChatApp) count(metric string) {
	if s.stats != nil {
		s.stats.Incr(metric)
	}
}

func (s *GoChatApp) Start() error {
	s.log.Infof("starting server on %s", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *GoChatApp) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
