package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/survey-builder/internal/survey"
	httperrors "github.com/gokatarajesh/survey-builder/pkg/http/errors"
	ws "github.com/gokatarajesh/survey-builder/pkg/http/ws"
)

// HTTPHandlers exposes the command/query API of a session over REST.
type HTTPHandlers struct {
	manager *Manager
	tokens  *TokenManager
	hub     *ws.Hub
	logger  zerolog.Logger
}

func NewHTTPHandlers(manager *Manager, tokens *TokenManager, hub *ws.Hub, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		manager: manager,
		tokens:  tokens,
		hub:     hub,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// CreateSessionResponse is returned by POST /v1/sessions.
type CreateSessionResponse struct {
	SessionID string          `json:"session_id"`
	Token     string          `json:"token"`
	Document  survey.Document `json:"document"`
}

// StatusResponse summarizes the derived views presentation code needs.
type StatusResponse struct {
	DisplayTitle        string             `json:"display_title"`
	ActiveQuestion      *survey.Question   `json:"active_question"`
	PreviewMode         bool               `json:"preview_mode"`
	LivePreview         survey.LivePreview `json:"live_preview"`
	MissingRequired     []string           `json:"missing_required"`
	AllRequiredAnswered bool               `json:"all_required_answered"`
}

// CommandResponse is returned after a dispatched command.
type CommandResponse struct {
	Command  survey.Kind     `json:"command"`
	Document survey.Document `json:"document"`
}

// Register mounts the session routes on mux.
func (h *HTTPHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/sessions", h.CreateSession)
	mux.HandleFunc("DELETE /v1/session", h.EndSession)
	mux.HandleFunc("GET /v1/session/document", h.GetDocument)
	mux.HandleFunc("GET /v1/session/survey", h.GetSurvey)
	mux.HandleFunc("GET /v1/session/responses", h.GetResponses)
	mux.HandleFunc("GET /v1/session/status", h.GetStatus)
	mux.HandleFunc("POST /v1/session/commands", h.DispatchCommand)
	mux.HandleFunc("GET /ws/session", h.HandleWebSocket)
}

// CreateSession handles POST /v1/sessions
func (h *HTTPHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.manager.Create(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create session")
		httperrors.RespondInternalError(w, "Could not create session")
		return
	}

	token, err := h.tokens.Issue(sess.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sess.ID.String()).Msg("failed to sign session token")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionCreationFailed, "Could not issue session token")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: sess.ID.String(),
		Token:     token,
		Document:  sess.Store.Snapshot(),
	})
}

// EndSession handles DELETE /v1/session
func (h *HTTPHandlers) EndSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, bearerToken(r))
	if !ok {
		return
	}

	if err := h.manager.End(r.Context(), claims.SessionID); err != nil {
		h.respondSessionError(w, err)
		return
	}

	if h.hub == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if msg, err := ws.NewMessage(ws.TypeSessionEnded, ws.SessionEndedPayload{
		SessionID: claims.SessionID.String(),
		Reason:    "ended",
	}); err == nil {
		h.hub.CloseSession(claims.SessionID, msg)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDocument handles GET /v1/session/document
func (h *HTTPHandlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, bearerToken(r))
	if !ok {
		return
	}
	h.respondIndented(w, sess.Store.Snapshot())
}

// GetSurvey handles GET /v1/session/survey
func (h *HTTPHandlers) GetSurvey(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, bearerToken(r))
	if !ok {
		return
	}
	h.respondIndented(w, sess.Store.Survey())
}

// GetResponses handles GET /v1/session/responses
func (h *HTTPHandlers) GetResponses(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, bearerToken(r))
	if !ok {
		return
	}
	h.respondIndented(w, sess.Store.Responses())
}

// GetStatus handles GET /v1/session/status
func (h *HTTPHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, bearerToken(r))
	if !ok {
		return
	}

	doc := sess.Store.Snapshot()
	missing := doc.MissingRequired()
	if missing == nil {
		missing = []string{}
	}
	h.respondJSON(w, http.StatusOK, StatusResponse{
		DisplayTitle:        doc.DisplayTitle(),
		ActiveQuestion:      doc.ActiveQuestion(),
		PreviewMode:         doc.PreviewMode,
		LivePreview:         doc.LivePreview,
		MissingRequired:     missing,
		AllRequiredAnswered: len(missing) == 0,
	})
}

// DispatchCommand handles POST /v1/session/commands
func (h *HTTPHandlers) DispatchCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, bearerToken(r))
	if !ok {
		return
	}

	var env survey.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	cmd, err := survey.Decode(env)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}

	if err := sess.Dispatch(cmd); err != nil {
		h.respondCommandError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, CommandResponse{
		Command:  cmd.Kind(),
		Document: sess.Store.Snapshot(),
	})
}

func (h *HTTPHandlers) authenticate(w http.ResponseWriter, token string) (*Claims, bool) {
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Session token required")
		return nil, false
	}
	claims, err := h.tokens.Validate(token)
	if err != nil {
		h.logger.Debug().Err(err).Msg("session token rejected")
		code := httperrors.ErrCodeInvalidToken
		if errors.Is(err, ErrExpiredToken) {
			code = httperrors.ErrCodeTokenExpired
		}
		httperrors.RespondUnauthorized(w, code, "Invalid or expired session token")
		return nil, false
	}
	return claims, true
}

func (h *HTTPHandlers) session(w http.ResponseWriter, r *http.Request, token string) (*Session, bool) {
	claims, ok := h.authenticate(w, token)
	if !ok {
		return nil, false
	}
	sess, err := h.manager.Get(r.Context(), claims.SessionID)
	if err != nil {
		h.respondSessionError(w, err)
		return nil, false
	}
	return sess, true
}

func (h *HTTPHandlers) respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found or expired")
		return
	}
	h.logger.Error().Err(err).Msg("session lookup failed")
	httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeSessionRestoreFailed, "Session could not be restored")
}

func (h *HTTPHandlers) respondCommandError(w http.ResponseWriter, err error) {
	var missing *MissingRequiredError
	switch {
	case errors.As(err, &missing):
		httperrors.RespondUnprocessable(w, httperrors.ErrCodeRequiredMissing, "Please answer all required questions", map[string]interface{}{
			"missing": missing.QuestionIDs,
		})
	case errors.Is(err, survey.ErrUnknownCommand):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeUnknownCommand, err.Error())
	case errors.Is(err, survey.ErrInvalidPayload):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, err.Error())
	default:
		h.logger.Error().Err(err).Msg("command dispatch failed")
		httperrors.RespondInternalError(w, "Command failed")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn().Err(err).Msg("encode response")
	}
}

// respondIndented writes the two-space indented form shown by the JSON viewer.
func (h *HTTPHandlers) respondIndented(w http.ResponseWriter, v interface{}) {
	data, err := survey.MarshalIndented(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal document")
		httperrors.RespondInternalError(w, "Could not render document")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
