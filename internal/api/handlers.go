package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/auth"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/cache"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/media"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/stats"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
)

const (
	defaultPlan       = "free"
	profilePicsFolder = "profile-pics"
)

type MessageResponse struct {
	Message string `json:"message"`
}

func (s *GoChatApp) writeJson(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("json encode")
	}
}

// writeError logs the cause of server side failures before responding.
func (s *GoChatApp) writeError(w http.ResponseWriter, errResp *ApiError) {
	if errResp.StatusCode >= http.StatusInternalServerError && errResp.Err != nil {
		s.log.WithError(errResp.Err).Error(errResp.Message)
	}
	s.writeJson(w, errResp.StatusCode, errResp)
}

func (s *GoChatApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *GoChatApp) setSession(w http.ResponseWriter, userId int) *ApiError {
	token, expiresAt, err := s.sessions.Issue(userId)
	if err != nil {
		return NewInternalServerError(err)
	}

	http.SetCookie(w, s.sessions.Cookie(token, expiresAt))
	return nil
}

func (s *GoChatApp) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if errResp := s.decodeRequest(w, r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	if req.Plan == "" {
		req.Plan = defaultPlan
	}

	pwdHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	user, err := s.db.CreateAccount(r.Context(), database.CreateAccountParams{
		FullName:     req.FullName,
		EmailAddress: req.Email,
		PasswordHash: pwdHash,
		Plan:         req.Plan,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			s.writeError(w, NewConflictError(database.ErrDuplicateEmail.Error()))
			return
		}
		s.writeError(w, NewInternalServerError(err))
		return
	}

	if errResp := s.setSession(w, user.Id); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	s.count(stats.AccountsCreated)
	s.log.WithField("user_id", user.Id).Info("account created")
	s.writeJson(w, http.StatusCreated, summary(user))
}

func (s *GoChatApp) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if errResp := s.decodeRequest(w, r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	user, err := s.db.GetAccountByEmail(r.Context(), req.Email)
	if err != nil {
		errResp := storeError(err)
		if errResp.StatusCode == http.StatusNotFound {
			errResp = NewInvalidCredentialsError()
		}
		s.writeError(w, errResp)
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.writeError(w, NewInvalidCredentialsError())
		return
	}

	if errResp := s.setSession(w, user.Id); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, summary(user))
}

func (s *GoChatApp) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessions.ExpiredCookie())
	s.writeJson(w, http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

func (s *GoChatApp) updateProfile(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	var req UpdateProfileRequest
	if errResp := s.decodeRequest(w, r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	url, errResp := s.upload(r, profilePicsFolder, req.ProfilePic)
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	user, err := s.db.UpdateProfilePic(r.Context(), userId, url)
	if err != nil {
		s.writeError(w, storeError(err))
		return
	}

	s.invalidate(r, userId)
	s.writeJson(w, http.StatusOK, toUser(user))
}

func (s *GoChatApp) checkAuth(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	user, err := s.users.Get(r.Context(), userId)
	if err == nil {
		s.writeJson(w, http.StatusOK, user)
		return
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).Warn("user cache lookup failed")
	}

	dbUser, err := s.db.GetAccountById(r.Context(), userId)
	if err != nil {
		s.writeError(w, storeError(err))
		return
	}

	user = toUser(dbUser)
	if err := s.users.Set(r.Context(), user); err != nil {
		s.log.WithError(err).Warn("user cache store failed")
	}

	s.writeJson(w, http.StatusOK, user)
}

// upload stores a data URI image and maps media failures to responses.
func (s *GoChatApp) upload(r *http.Request, folder, dataURI string) (string, *ApiError) {
	url, err := s.uploader.Upload(r.Context(), folder, dataURI)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) || errors.Is(err, media.ErrImageTooLarge) {
			return "", NewValidationError(err.Error())
		}
		return "", NewExternalServiceError(err)
	}
	return url, nil
}

func (s *GoChatApp) invalidate(r *http.Request, userIds ...int) {
	if err := s.users.Invalidate(r.Context(), userIds...); err != nil {
		s.log.WithError(err).Warn("user cache invalidation failed")
	}
}

func summary(u database.User) types.User {
	return types.User{
		Id:           u.Id,
		FullName:     u.FullName,
		EmailAddress: u.EmailAddress,
		ProfilePic:   u.ProfilePic,
		Plan:         u.Plan,
	}
}
