package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/notify"
	"prepwise/interview/internal/repositories"
	"prepwise/interview/internal/utils"
)

// ScheduleHandler manages scheduled interviews. These are plain CRUD
// records outside the session state machine.
type ScheduleHandler struct {
	repo     repositories.ScheduleRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewScheduleHandler(repo repositories.ScheduleRepository, notifier notify.Notifier, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *ScheduleHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ScheduleInterviewRequest](r)
	callerID := middleware.CallerID(r)

	schedule := &models.ScheduledInterview{
		ID:           uuid.New().String(),
		OwnerID:      callerID,
		Category:     req.Category,
		ScheduledFor: req.ScheduledFor.UTC(),
		Notes:        req.Notes,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.repo.Insert(r.Context(), schedule); err != nil {
		h.logger.Error("failed to store schedule", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "upstream_error",
			Message: "Failed to store scheduled interview",
		})
		return
	}

	// Confirmation email is best-effort; a send failure never fails
	// the scheduling itself.
	subject := fmt.Sprintf("%s interview practice scheduled", schedule.Category)
	body := fmt.Sprintf("Your %s practice interview is booked for %s.\n",
		schedule.Category, schedule.ScheduledFor.Format("Mon, 2 Jan 2006 at 15:04 MST"))
	if err := h.notifier.Send(callerID, subject, body); err != nil {
		h.logger.Warn("failed to send scheduling confirmation",
			zap.String("schedule_id", schedule.ID), zap.Error(err))
	}

	utils.JSON(w, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r)

	schedules, err := h.repo.ListByOwner(r.Context(), callerID)
	if err != nil {
		h.logger.Error("failed to list schedules", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "upstream_error",
			Message: "Failed to list scheduled interviews",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.ScheduleListResponse{
		Total: len(schedules),
		Items: schedules,
	})
}

func (h *ScheduleHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r)

	schedule, err := h.repo.Get(r.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "not_found",
				Message: "Scheduled interview not found",
			})
			return
		}
		h.logger.Error("failed to load schedule", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "upstream_error",
			Message: "Failed to load scheduled interview",
		})
		return
	}

	if schedule.OwnerID != callerID {
		utils.JSON(w, http.StatusForbidden, models.ErrorResponse{
			Code:    "forbidden",
			Message: "Scheduled interview belongs to another user",
		})
		return
	}

	if err := h.repo.Delete(r.Context(), scheduleID); err != nil {
		h.logger.Error("failed to delete schedule", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "upstream_error",
			Message: "Failed to delete scheduled interview",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
