package routers

import (
	"github.com/go-chi/chi/v5"

	"prepwise/interview/internal/handlers"
	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
)

// InterviewRoutes mounts the authenticated API surface. Every route
// below requires a valid bearer token.
func InterviewRoutes(router *chi.Mux, jwtSecret string, sessionHandler *handlers.SessionHandler, scheduleHandler *handlers.ScheduleHandler, reportHandler *handlers.ReportHandler) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret))

		r.Route("/interviews", func(r chi.Router) {
			r.With(middleware.ValidateRequest[*models.CreateSessionRequest]()).Post("/", sessionHandler.CreateHandler)
			r.Get("/", sessionHandler.ListHandler)
			r.Get("/{id}", sessionHandler.GetHandler)
			r.With(middleware.ValidateRequest[*models.EvaluateAnswerRequest]()).Post("/{id}/answers", sessionHandler.EvaluateHandler)
			r.With(middleware.ValidateRequest[*models.CompleteSessionRequest]()).Post("/{id}/complete", sessionHandler.CompleteHandler)
			r.Post("/{id}/cancel", sessionHandler.CancelHandler)
			r.Get("/{id}/report", reportHandler.DownloadHandler)
		})

		r.Get("/recommendations", sessionHandler.RecommendationsHandler)

		r.Route("/schedules", func(r chi.Router) {
			r.With(middleware.ValidateRequest[*models.ScheduleInterviewRequest]()).Post("/", scheduleHandler.CreateHandler)
			r.Get("/", scheduleHandler.ListHandler)
			r.Delete("/{id}", scheduleHandler.DeleteHandler)
		})
	})
}
