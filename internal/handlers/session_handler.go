package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/session"
	"prepwise/interview/internal/utils"
)

type SessionHandler struct {
	manager *session.Manager
	logger  *zap.Logger
}

func NewSessionHandler(manager *session.Manager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		logger:  logger,
	}
}

// writeLifecycleError maps the manager's error taxonomy onto HTTP
// statuses. Wrapped causes stay server-side.
func writeLifecycleError(w http.ResponseWriter, err error) {
	kind := session.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case session.KindInvalidArgument:
		status = http.StatusBadRequest
	case session.KindUnauthenticated:
		status = http.StatusUnauthorized
	case session.KindForbidden:
		status = http.StatusForbidden
	case session.KindNotFound:
		status = http.StatusNotFound
	case session.KindInvalidState:
		status = http.StatusConflict
	case session.KindUpstream:
		status = http.StatusBadGateway
		metrics.UpstreamErrors.Inc()
	}

	utils.JSON(w, status, models.ErrorResponse{
		Code:    string(kind),
		Message: session.MessageOf(err),
	})
}

func (h *SessionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateSessionRequest](r)
	callerID := middleware.CallerID(r)

	created, err := h.manager.Create(r.Context(), callerID, req)
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	metrics.SessionsCreated.Inc()
	utils.JSON(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: created.ID,
		Status:    created.Status,
	})
}

func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r)

	resp, err := h.manager.GetOrMaterializeQuestions(r.Context(), sessionID, callerID)
	if err != nil {
		h.logger.Error("failed to fetch session questions",
			zap.String("session_id", sessionID), zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.EvaluateAnswerRequest](r)
	sessionID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r)

	resp, err := h.manager.EvaluateAnswer(r.Context(), sessionID, callerID, req)
	if err != nil {
		h.logger.Error("failed to evaluate answer",
			zap.String("session_id", sessionID),
			zap.String("question_id", req.QuestionID),
			zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	outcome := "ok"
	if resp.Degraded {
		outcome = "degraded"
	}
	metrics.Evaluations.WithLabelValues(outcome).Inc()

	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CompleteSessionRequest](r)
	sessionID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r)

	completed, err := h.manager.Complete(r.Context(), sessionID, callerID, req.ElapsedSeconds)
	if err != nil {
		h.logger.Error("failed to complete session",
			zap.String("session_id", sessionID), zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	metrics.SessionsCompleted.Inc()
	utils.JSON(w, http.StatusOK, completed)
}

func (h *SessionHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r)

	if err := h.manager.Cancel(r.Context(), sessionID, callerID); err != nil {
		h.logger.Error("failed to cancel session",
			zap.String("session_id", sessionID), zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	metrics.SessionsCancelled.Inc()
	utils.JSON(w, http.StatusOK, map[string]string{"status": models.StatusCancelled})
}

func (h *SessionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r)

	summaries, err := h.manager.ListForUser(r.Context(), callerID)
	if err != nil {
		h.logger.Error("failed to list sessions", zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SessionListResponse{
		Total: len(summaries),
		Items: summaries,
	})
}

func (h *SessionHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r)

	items, err := h.manager.Recommendations(r.Context(), callerID)
	if err != nil {
		h.logger.Error("failed to compute recommendations", zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.RecommendationsResponse{Items: items})
}
