package session

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/prompts"
	"prepwise/interview/internal/repositories"
	"prepwise/interview/internal/utils"
)

// Thresholds for the deterministic aggregate derivations on
// completion and for recommendations.
const (
	strengthOverallThreshold  = 70
	strengthQuestionThreshold = 80
	improvementThreshold      = 50
	recommendationThreshold   = 75.0

	// degradedScore is stored when the evaluation upstream fails or
	// returns unusable output; the answer itself is never dropped.
	degradedScore = 50

	recommendationCacheTTL = 5 * time.Minute
)

const degradedFeedback = "We couldn't automatically evaluate this answer. Your response has been saved; review it against the question yourself and try re-answering if you'd like a scored evaluation."

// Manager is the sole arbiter of interview session state transitions.
// It owns every call to the generative provider and the session store
// made on behalf of a session.
type Manager struct {
	repo     repositories.SessionRepository
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
	now      func() time.Time
	recos    *recommendationCache
}

func NewManager(repo repositories.SessionRepository, provider llm.Provider, promptProvider prompts.PromptProvider, logger *zap.Logger) *Manager {
	return &Manager{
		repo:     repo,
		provider: provider,
		prompts:  promptProvider,
		logger:   logger,
		now:      time.Now,
		recos:    newRecommendationCache(recommendationCacheTTL),
	}
}

// SetClock overrides the manager's time source; used by tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Create inserts a new active session with empty questions and
// answers. No AI call happens here; questions are generated lazily on
// first read.
func (m *Manager) Create(ctx context.Context, ownerID string, req *models.CreateSessionRequest) (*models.InterviewSession, error) {
	if ownerID == "" {
		return nil, &Error{Kind: KindUnauthenticated, Message: "caller identity is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Message: err.Error()}
	}

	session := &models.InterviewSession{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Category:      utils.NormalizeCategory(req.Category),
		Difficulty:    utils.NormalizeDifficulty(req.Difficulty),
		QuestionCount: req.QuestionCount,
		Status:        models.StatusActive,
		Questions:     []models.Question{},
		Answers:       map[string]models.AnswerEvaluation{},
		CreatedAt:     m.now().UTC(),
	}

	if err := m.repo.Insert(ctx, session); err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "failed to store session", Err: err}
	}

	m.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("category", session.Category),
		zap.String("difficulty", session.Difficulty),
		zap.Int("question_count", session.QuestionCount))

	return session, nil
}

// GetOrMaterializeQuestions returns the session's question list,
// generating and persisting it on first read. Generation happens at
// most once per session: a non-empty list is never regenerated. On
// upstream failure nothing is persisted.
func (m *Manager) GetOrMaterializeQuestions(ctx context.Context, sessionID, callerID string) (*models.SessionQuestionsResponse, error) {
	session, err := m.load(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	if session.Status != models.StatusActive && session.Status != models.StatusCompleted {
		return nil, &Error{Kind: KindInvalidState, Message: "session is " + session.Status}
	}

	if len(session.Questions) == 0 {
		questions, err := m.materializeQuestions(ctx, session)
		if err != nil {
			return nil, err
		}
		session.Questions = questions
	}

	return &models.SessionQuestionsResponse{
		SessionID:       session.ID,
		Category:        session.Category,
		Difficulty:      session.Difficulty,
		Questions:       session.Questions,
		TotalQuestions:  len(session.Questions),
		DurationMinutes: session.DurationMinutes(),
		Status:          session.Status,
	}, nil
}

func (m *Manager) materializeQuestions(ctx context.Context, session *models.InterviewSession) ([]models.Question, error) {
	prompt, err := m.prompts.BuildPrompt("questions", map[string]string{
		"Category":   session.Category,
		"Difficulty": session.Difficulty,
		"Count":      strconv.Itoa(session.QuestionCount),
	})
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "failed to build generation prompt", Err: err}
	}

	result, err := m.provider.GenerateContent(ctx, prompt, session.ID)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "question generation failed", Err: err}
	}

	questions, err := parseQuestions(result.Content, session.QuestionCount)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "question generation returned unusable output", Err: err}
	}

	if err := m.repo.Update(ctx, session.ID, map[string]interface{}{"questions": questions}); err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "failed to store questions", Err: err}
	}

	m.logger.Info("questions materialized",
		zap.String("session_id", session.ID),
		zap.Int("count", len(questions)),
		zap.Int("generation_ms", result.Metadata.ProcessingTimeMs))

	return questions, nil
}

// EvaluateAnswer scores one submitted answer and stores the result,
// replacing any previous evaluation for the same question. Upstream
// failures degrade to a placeholder evaluation instead of failing:
// losing the user's answer is worse than a low-quality score.
func (m *Manager) EvaluateAnswer(ctx context.Context, sessionID, callerID string, req *models.EvaluateAnswerRequest) (*models.EvaluationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Message: err.Error()}
	}

	session, err := m.load(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, &Error{Kind: KindInvalidState, Message: "session is " + session.Status}
	}

	evaluation := models.AnswerEvaluation{
		QuestionID:   req.QuestionID,
		QuestionText: req.QuestionText,
		Answer:       req.Answer,
		EvaluatedAt:  m.now().UTC(),
	}
	degraded := false

	result, evalErr := m.evaluate(ctx, session, req)
	if evalErr != nil {
		m.logger.Warn("evaluation degraded to placeholder",
			zap.String("session_id", session.ID),
			zap.String("question_id", req.QuestionID),
			zap.Error(evalErr))
		evaluation.Feedback = degradedFeedback
		evaluation.Score = degradedScore
		evaluation.KeyPoints = []models.KeyPoint{}
		degraded = true
	} else {
		evaluation.Feedback = result.Feedback
		evaluation.Score = result.Score
		evaluation.KeyPoints = result.KeyPoints
	}

	patch := map[string]interface{}{"answers." + req.QuestionID: evaluation}
	if err := m.repo.Update(ctx, session.ID, patch); err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "failed to store evaluation", Err: err}
	}

	return &models.EvaluationResponse{
		QuestionID: req.QuestionID,
		Feedback:   evaluation.Feedback,
		Score:      evaluation.Score,
		KeyPoints:  evaluation.KeyPoints,
		Degraded:   degraded,
	}, nil
}

func (m *Manager) evaluate(ctx context.Context, session *models.InterviewSession, req *models.EvaluateAnswerRequest) (*evaluationResult, error) {
	prompt, err := m.prompts.BuildPrompt("evaluation", map[string]string{
		"Category":   session.Category,
		"Difficulty": session.Difficulty,
		"Question":   req.QuestionText,
		"Answer":     req.Answer,
	})
	if err != nil {
		return nil, err
	}

	result, err := m.provider.GenerateContent(ctx, prompt, session.ID+"/"+req.QuestionID)
	if err != nil {
		return nil, err
	}

	return parseEvaluation(result.Content)
}

// Complete finalizes an active session. The overall score is always
// recomputed from the stored evaluations; a client-supplied aggregate
// is never trusted.
func (m *Manager) Complete(ctx context.Context, sessionID, callerID string, elapsedSeconds int) (*models.InterviewSession, error) {
	if elapsedSeconds < 0 {
		return nil, &Error{Kind: KindInvalidArgument, Message: "elapsed seconds must not be negative"}
	}

	session, err := m.load(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, &Error{Kind: KindInvalidState, Message: "session is " + session.Status}
	}

	overall := overallScore(session.Answers)
	strengths, improvements := deriveAdvice(overall, session)
	completedAt := m.now().UTC()
	duration := formatDuration(elapsedSeconds)

	patch := map[string]interface{}{
		"status":        models.StatusCompleted,
		"overall_score": overall,
		"strengths":     strengths,
		"improvements":  improvements,
		"duration":      duration,
		"completed_at":  completedAt,
	}
	if err := m.repo.Update(ctx, session.ID, patch); err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "failed to complete session", Err: err}
	}

	session.Status = models.StatusCompleted
	session.OverallScore = overall
	session.Strengths = strengths
	session.Improvements = improvements
	session.Duration = duration
	session.CompletedAt = &completedAt

	m.recos.Invalidate(callerID)

	m.logger.Info("session completed",
		zap.String("session_id", session.ID),
		zap.Int("overall_score", overall),
		zap.Int("answers", len(session.Answers)))

	return session, nil
}

// Cancel terminates an active session without aggregates.
func (m *Manager) Cancel(ctx context.Context, sessionID, callerID string) error {
	session, err := m.load(ctx, sessionID, callerID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusActive {
		return &Error{Kind: KindInvalidState, Message: "session is " + session.Status}
	}

	patch := map[string]interface{}{"status": models.StatusCancelled}
	if err := m.repo.Update(ctx, session.ID, patch); err != nil {
		return &Error{Kind: KindUpstream, Message: "failed to cancel session", Err: err}
	}

	m.logger.Info("session cancelled", zap.String("session_id", session.ID))
	return nil
}

// ListForUser returns the caller's session summaries, newest first.
// Each call re-queries the store for a fresh snapshot.
func (m *Manager) ListForUser(ctx context.Context, callerID string) ([]models.SessionSummary, error) {
	if callerID == "" {
		return nil, &Error{Kind: KindUnauthenticated, Message: "caller identity is required"}
	}

	sessions, err := m.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "failed to list sessions", Err: err}
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		summaries = append(summaries, sessions[i].Summary())
	}
	return summaries, nil
}

// Report returns the full session record for report rendering. Only
// completed sessions have the aggregates a report needs.
func (m *Manager) Report(ctx context.Context, sessionID, callerID string) (*models.InterviewSession, error) {
	session, err := m.load(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusCompleted {
		return nil, &Error{Kind: KindInvalidState, Message: "report is only available for completed sessions"}
	}
	return session, nil
}

// load fetches a session and enforces ownership. Authorization is
// checked before any external call is made on the session's behalf.
func (m *Manager) load(ctx context.Context, sessionID, callerID string) (*models.InterviewSession, error) {
	if callerID == "" {
		return nil, &Error{Kind: KindUnauthenticated, Message: "caller identity is required"}
	}
	if sessionID == "" {
		return nil, &Error{Kind: KindInvalidArgument, Message: "session id is required"}
	}

	session, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, &Error{Kind: KindNotFound, Message: "session not found"}
		}
		return nil, &Error{Kind: KindUpstream, Message: "failed to load session", Err: err}
	}

	if session.OwnerID != callerID {
		return nil, &Error{Kind: KindForbidden, Message: "session belongs to another user"}
	}

	return session, nil
}

// overallScore is the rounded mean of the evaluated answers' scores,
// or 0 when nothing was answered.
func overallScore(answers map[string]models.AnswerEvaluation) int {
	if len(answers) == 0 {
		return 0
	}
	sum := 0
	for _, a := range answers {
		sum += a.Score
	}
	return int(math.Round(float64(sum) / float64(len(answers))))
}

// deriveAdvice produces the strength and improvement statements from
// simple fixed thresholds.
func deriveAdvice(overall int, session *models.InterviewSession) ([]string, []string) {
	strengths := []string{}
	improvements := []string{}

	if overall >= strengthOverallThreshold {
		strengths = append(strengths, fmt.Sprintf("Solid overall performance in %s questions at %s difficulty.", session.Category, session.Difficulty))
	}

	// walk questions in order so the advice is deterministic
	for _, q := range session.Questions {
		answer, ok := session.Answers[q.ID]
		if !ok {
			continue
		}
		if answer.Score >= strengthQuestionThreshold {
			strengths = append(strengths, "Strong answer to: "+q.Text)
		}
		if answer.Score < improvementThreshold {
			improvements = append(improvements, "Revisit this question: "+q.Text)
		}
	}

	if len(improvements) == 0 && overall < strengthOverallThreshold {
		improvements = append(improvements, "Keep practicing to push your average score higher.")
	}

	return strengths, improvements
}

// formatDuration renders the client-reported elapsed time as a human
// readable string.
func formatDuration(elapsedSeconds int) string {
	minutes := elapsedSeconds / 60
	seconds := elapsedSeconds % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
