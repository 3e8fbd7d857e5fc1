package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/reports"
	"prepwise/interview/internal/session"
	"prepwise/interview/internal/utils"
)

type ReportHandler struct {
	manager *session.Manager
	logger  *zap.Logger
}

func NewReportHandler(manager *session.Manager, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		manager: manager,
		logger:  logger,
	}
}

// DownloadHandler streams a PDF report for a completed session.
func (h *ReportHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r)

	record, err := h.manager.Report(r.Context(), sessionID, callerID)
	if err != nil {
		h.logger.Error("failed to load session for report",
			zap.String("session_id", sessionID), zap.Error(err))
		writeLifecycleError(w, err)
		return
	}

	pdf, err := reports.RenderSessionPDF(record)
	if err != nil {
		h.logger.Error("failed to render report",
			zap.String("session_id", sessionID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "report_error",
			Message: "Failed to render report",
		})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="interview-report-`+record.ID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
