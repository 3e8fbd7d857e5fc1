package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"
	"prepwise/interview/internal/session"
)

// stubSessionRepo mimics the document store's partial-update semantics
// in memory.
type stubSessionRepo struct {
	sessions map[string]*models.InterviewSession
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*models.InterviewSession)}
}

func (s *stubSessionRepo) Insert(ctx context.Context, record *models.InterviewSession) error {
	clone := *record
	s.sessions[record.ID] = &clone
	return nil
}

func (s *stubSessionRepo) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	record, ok := s.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *stubSessionRepo) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	record, ok := s.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for key, value := range patch {
		switch {
		case key == "questions":
			record.Questions = value.([]models.Question)
		case key == "status":
			record.Status = value.(string)
		case key == "overall_score":
			record.OverallScore = value.(int)
		case key == "strengths":
			record.Strengths = value.([]string)
		case key == "improvements":
			record.Improvements = value.([]string)
		case key == "duration":
			record.Duration = value.(string)
		case key == "completed_at":
			at := value.(time.Time)
			record.CompletedAt = &at
		case strings.HasPrefix(key, "answers."):
			if record.Answers == nil {
				record.Answers = make(map[string]models.AnswerEvaluation)
			}
			record.Answers[strings.TrimPrefix(key, "answers.")] = value.(models.AnswerEvaluation)
		}
	}
	return nil
}

func (s *stubSessionRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error) {
	var out []models.InterviewSession
	for _, record := range s.sessions {
		if record.OwnerID == ownerID {
			out = append(out, *record)
		}
	}
	return out, nil
}

type stubProvider struct {
	content string
	err     error
}

func (s *stubProvider) GenerateContent(ctx context.Context, prompt, requestID string) (*llm.GenerationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerationResult{Content: s.content}, nil
}

func (s *stubProvider) GetProviderName() string { return "stub" }

type stubPrompts struct{}

func (s *stubPrompts) BuildPrompt(mode string, data map[string]string) (string, error) {
	return mode, nil
}

func (s *stubPrompts) GetTemplates() []string { return []string{"questions", "evaluation"} }

const stubQuestions = `[
	{"id": "q1", "text": "Tell me about yourself."},
	{"id": "q2", "text": "Why this role?"}
]`

const stubEvaluation = `{
	"feedback": "Good answer.",
	"score": 75,
	"key_points": [{"text": "Gave an example", "met": true}]
}`

// testServer mounts the session routes the way production does, with a
// fixed caller injected in place of the auth middleware.
func testServer(repo repositories.SessionRepository, provider llm.Provider, callerID string) (*chi.Mux, *session.Manager) {
	manager := session.NewManager(repo, provider, &stubPrompts{}, zap.NewNop())
	handler := NewSessionHandler(manager, zap.NewNop())
	reportHandler := NewReportHandler(manager, zap.NewNop())

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, middleware.WithCallerID(r, callerID))
		})
	})
	router.Route("/interviews", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.CreateSessionRequest]()).Post("/", handler.CreateHandler)
		r.Get("/", handler.ListHandler)
		r.Get("/{id}", handler.GetHandler)
		r.With(middleware.ValidateRequest[*models.EvaluateAnswerRequest]()).Post("/{id}/answers", handler.EvaluateHandler)
		r.With(middleware.ValidateRequest[*models.CompleteSessionRequest]()).Post("/{id}/complete", handler.CompleteHandler)
		r.Post("/{id}/cancel", handler.CancelHandler)
		r.Get("/{id}/report", reportHandler.DownloadHandler)
	})
	router.Get("/recommendations", handler.RecommendationsHandler)

	return router, manager
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func createSessionViaAPI(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/interviews", `{"category": "HR", "difficulty": "Easy", "question_count": 2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating session, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.CreateSessionResponse
	decodeBody(t, rec, &resp)
	if resp.SessionID == "" {
		t.Fatal("create response has no session id")
	}
	return resp.SessionID
}
