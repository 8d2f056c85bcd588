// internal/devserver/handlers.go

package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/messaging"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
	"github.com/imadgeboyega/gravelmatch/internal/session"
)

type Handler struct {
	store       *Store
	secret      string
	tokenExpiry time.Duration
	log         zerolog.Logger
}

func NewHandler(store *Store, secret string, tokenExpiry time.Duration, log zerolog.Logger) *Handler {
	return &Handler{store: store, secret: secret, tokenExpiry: tokenExpiry, log: log}
}

type healthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}

type tipsResponse struct {
	Tips string `json:"tips"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "healthy", App: "GravelMatch API"})
}

// Register creates an account and signs the user in
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req session.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.store.CreateUser(profile.Rider{Email: req.Email, Name: strings.TrimSpace(req.Name)}, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			utils.RespondWithError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		h.log.Error().Err(err).Msg("register failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.respondWithToken(w, user)
}

// Login exchanges credentials for an access token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.respondWithToken(w, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, user profile.Rider) {
	now := time.Now()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		Subject:   user.Email,
		UserID:    user.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(h.tokenExpiry).Unix(),
	}, h.secret)
	if err != nil {
		h.log.Error().Err(err).Msg("token signing failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, session.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated account
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// Discover lists candidates for the authenticated user
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := utils.ValidateStruct(filter); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, h.store.Discover(user.ID, filter))
}

func parseFilter(r *http.Request) (discovery.FilterSet, error) {
	q := r.URL.Query()
	var f discovery.FilterSet
	var err error

	ints := []struct {
		key string
		dst **int
	}{
		{"min_age", &f.MinAge},
		{"max_age", &f.MaxAge},
		{"min_distance", &f.MinDistance},
		{"max_distance", &f.MaxDistance},
	}
	for _, p := range ints {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, convErr := strconv.Atoi(raw)
		if convErr != nil {
			err = errors.Join(err, errors.New(p.key+" must be an integer"))
			continue
		}
		*p.dst = &v
	}

	f.ExperienceLevel = profile.ExperienceLevel(q.Get("experience_level"))
	f.Zone = strings.TrimSpace(q.Get("zone"))
	return f, err
}

// Swipe records a like or dislike
func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req discovery.SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TargetUserID == "" || !req.Action.Valid() {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "target_user_id and a like or dislike action are required")
		return
	}

	matchID, matched, err := h.store.Swipe(user.ID, req.TargetUserID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrSelfSwipe):
			utils.RespondWithError(w, http.StatusBadRequest, "Cannot swipe on yourself")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Swipe failed")
		}
		return
	}

	resp := discovery.SwipeResponse{Success: true, Match: matched}
	if matched {
		resp.MatchID = &matchID
		h.log.Info().Str("user_id", user.ID).Str("match_id", matchID).Msg("new match")
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetMatches lists the user's matches
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, h.store.Matches(user.ID))
}

// GetMessages returns the chat history of a match
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	matchID := mux.Vars(r)["match_id"]

	list, err := h.store.Messages(user.ID, matchID)
	if err != nil {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// SendMessage appends a chat message
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req messaging.SendMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.store.SendMessage(user.ID, req.MatchID, strings.TrimSpace(req.Content))
	if err != nil {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, msg)
}

// MatchTips suggests conversation starters about target_user_id
func (h *Handler) MatchTips(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	targetID := r.URL.Query().Get("target_user_id")
	if targetID == "" {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "target_user_id is required")
		return
	}

	tips, err := h.store.MatchTips(user.ID, targetID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tipsResponse{Tips: tips})
}

// GetNotifications retrieves notifications for the authenticated user
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	utils.RespondWithJSON(w, http.StatusOK, h.store.Notifications(user.ID, limit))
}

// GetUnreadCount returns the number of unread notifications
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, notification.UnreadCount{Count: h.store.UnreadCount(user.ID)})
}

// MarkAsRead marks a notification as read
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := h.store.MarkRead(user.ID, mux.Vars(r)["id"]); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	utils.RespondWithAck(w)
}

// MarkAllAsRead marks all notifications as read for the user
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	h.store.MarkAllRead(user.ID)
	utils.RespondWithAck(w)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}
