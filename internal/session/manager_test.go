package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"
)

// fakeRepo is an in-memory SessionRepository that applies partial
// patches the way the document store would.
type fakeRepo struct {
	sessions  map[string]*models.InterviewSession
	insertErr error
	getErr    error
	updateErr error
	updates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*models.InterviewSession)}
}

func (f *fakeRepo) Insert(ctx context.Context, s *models.InterviewSession) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	clone := *s
	f.sessions[s.ID] = &clone
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *s
	clone.Questions = append([]models.Question(nil), s.Questions...)
	clone.Answers = make(map[string]models.AnswerEvaluation, len(s.Answers))
	for k, v := range s.Answers {
		clone.Answers[k] = v
	}
	return &clone, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	f.updates++
	for key, value := range patch {
		switch {
		case key == "questions":
			s.Questions = value.([]models.Question)
		case key == "status":
			s.Status = value.(string)
		case key == "overall_score":
			s.OverallScore = value.(int)
		case key == "strengths":
			s.Strengths = value.([]string)
		case key == "improvements":
			s.Improvements = value.([]string)
		case key == "duration":
			s.Duration = value.(string)
		case key == "completed_at":
			t := value.(time.Time)
			s.CompletedAt = &t
		case strings.HasPrefix(key, "answers."):
			if s.Answers == nil {
				s.Answers = make(map[string]models.AnswerEvaluation)
			}
			s.Answers[strings.TrimPrefix(key, "answers.")] = value.(models.AnswerEvaluation)
		}
	}
	return nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []models.InterviewSession
	for _, s := range f.sessions {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeProvider struct {
	content string
	err     error
	calls   int
}

func (f *fakeProvider) GenerateContent(ctx context.Context, prompt, requestID string) (*llm.GenerationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerationResult{Content: f.content, Metadata: llm.Metadata{Provider: "fake"}}, nil
}

func (f *fakeProvider) GetProviderName() string { return "fake" }

type fakePrompts struct{}

func (f *fakePrompts) BuildPrompt(mode string, data map[string]string) (string, error) {
	return mode + " prompt", nil
}

func (f *fakePrompts) GetTemplates() []string { return []string{"questions", "evaluation"} }

func newTestManager(repo repositories.SessionRepository, provider llm.Provider) *Manager {
	return NewManager(repo, provider, &fakePrompts{}, zap.NewNop())
}

func createTestSession(t *testing.T, m *Manager, owner string, count int) *models.InterviewSession {
	t.Helper()
	s, err := m.Create(context.Background(), owner, &models.CreateSessionRequest{
		Category:      "HR",
		Difficulty:    "Easy",
		QuestionCount: count,
	})
	require.NoError(t, err)
	return s
}

const threeQuestions = `[
	{"id": "q1", "text": "Tell me about yourself."},
	{"id": "q2", "text": "Why this company?"},
	{"id": "q3", "text": "Describe a conflict you resolved."}
]`

const goodEvaluation = `{
	"feedback": "Clear and structured answer.",
	"score": 80,
	"key_points": [
		{"text": "Gave a concrete example", "met": true},
		{"text": "Mentioned the outcome", "met": false}
	]
}`

func TestCreateRejectsInvalidInput(t *testing.T) {
	m := newTestManager(newFakeRepo(), &fakeProvider{})

	cases := []models.CreateSessionRequest{
		{Category: "", Difficulty: "Easy", QuestionCount: 3},
		{Category: "Astrology", Difficulty: "Easy", QuestionCount: 3},
		{Category: "HR", Difficulty: "Impossible", QuestionCount: 3},
		{Category: "HR", Difficulty: "Easy", QuestionCount: 0},
		{Category: "HR", Difficulty: "Easy", QuestionCount: -2},
	}
	for _, tc := range cases {
		_, err := m.Create(context.Background(), "u1", &tc)
		require.Error(t, err)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	}
}

func TestCreateInsertsActiveSession(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{})

	s := createTestSession(t, m, "u1", 3)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, models.StatusActive, s.Status)
	assert.Empty(t, s.Questions)
	assert.Empty(t, s.Answers)

	stored, err := repo.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.OwnerID)
}

func TestCreateRequiresCaller(t *testing.T) {
	m := newTestManager(newFakeRepo(), &fakeProvider{})
	_, err := m.Create(context.Background(), "", &models.CreateSessionRequest{
		Category: "HR", Difficulty: "Easy", QuestionCount: 3,
	})
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestMaterializeQuestionsHappensOnce(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{content: threeQuestions}
	m := newTestManager(repo, provider)
	s := createTestSession(t, m, "u1", 3)

	first, err := m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	require.NoError(t, err)
	require.Len(t, first.Questions, 3)
	assert.Equal(t, 3, first.TotalQuestions)
	assert.Equal(t, 15, first.DurationMinutes)

	second, err := m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.Questions, second.Questions)
	assert.Equal(t, 1, provider.calls, "questions must be generated at most once")
}

func TestMaterializeQuestionIDsAreUniqueAndNonEmpty(t *testing.T) {
	repo := newFakeRepo()
	// one missing id, one duplicate
	provider := &fakeProvider{content: `[
		{"text": "First?"},
		{"id": "dup", "text": "Second?"},
		{"id": "dup", "text": "Third?"}
	]`}
	m := newTestManager(repo, provider)
	s := createTestSession(t, m, "u1", 3)

	resp, err := m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, q := range resp.Questions {
		assert.NotEmpty(t, q.ID)
		assert.NotEmpty(t, q.Text)
		assert.False(t, seen[q.ID], "duplicate question id %s", q.ID)
		seen[q.ID] = true
	}
}

func TestMaterializeFailureLeavesNoPartialWrite(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{err: errors.New("model down")}
	m := newTestManager(repo, provider)
	s := createTestSession(t, m, "u1", 3)

	_, err := m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	assert.Equal(t, KindUpstream, KindOf(err))

	stored, getErr := repo.Get(context.Background(), s.ID)
	require.NoError(t, getErr)
	assert.Empty(t, stored.Questions)
	assert.Zero(t, repo.updates)
}

func TestMaterializeUnparseableOutput(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{content: "Sure! Here are some questions..."})
	s := createTestSession(t, m, "u1", 3)

	_, err := m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Zero(t, repo.updates)
}

func TestGetGuards(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{content: threeQuestions})
	s := createTestSession(t, m, "u1", 3)

	_, err := m.GetOrMaterializeQuestions(context.Background(), "no-such-id", "u1")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = m.GetOrMaterializeQuestions(context.Background(), s.ID, "u2")
	assert.Equal(t, KindForbidden, KindOf(err))

	require.NoError(t, m.Cancel(context.Background(), s.ID, "u1"))
	_, err = m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestEvaluateAnswerStoresAndReplaces(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{content: goodEvaluation})
	s := createTestSession(t, m, "u1", 3)

	resp, err := m.EvaluateAnswer(context.Background(), s.ID, "u1", &models.EvaluateAnswerRequest{
		QuestionID:   "q1",
		QuestionText: "Tell me about yourself.",
		Answer:       "I am a software engineer.",
	})
	require.NoError(t, err)
	assert.Equal(t, 80, resp.Score)
	assert.False(t, resp.Degraded)
	assert.Len(t, resp.KeyPoints, 2)

	// re-answering replaces, not duplicates
	_, err = m.EvaluateAnswer(context.Background(), s.ID, "u1", &models.EvaluateAnswerRequest{
		QuestionID:   "q1",
		QuestionText: "Tell me about yourself.",
		Answer:       "A longer second attempt.",
	})
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, "A longer second attempt.", stored.Answers["q1"].Answer)
	assert.Equal(t, models.StatusActive, stored.Status, "evaluation must not change status")
}

func TestEvaluateDegradesOnUpstreamFailure(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{err: errors.New("model down")})
	s := createTestSession(t, m, "u1", 3)

	resp, err := m.EvaluateAnswer(context.Background(), s.ID, "u1", &models.EvaluateAnswerRequest{
		QuestionID:   "q1",
		QuestionText: "Tell me about yourself.",
		Answer:       "My answer.",
	})
	require.NoError(t, err, "a failed evaluation must not lose the answer")
	assert.True(t, resp.Degraded)
	assert.Equal(t, degradedScore, resp.Score)
	assert.NotEmpty(t, resp.Feedback)

	stored, err := repo.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "My answer.", stored.Answers["q1"].Answer)
}

func TestEvaluateDegradesOnUnparseableOutput(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{content: `{"score": 400}`})
	s := createTestSession(t, m, "u1", 3)

	resp, err := m.EvaluateAnswer(context.Background(), s.ID, "u1", &models.EvaluateAnswerRequest{
		QuestionID:   "q1",
		QuestionText: "Tell me about yourself.",
		Answer:       "My answer.",
	})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.GreaterOrEqual(t, resp.Score, 0)
	assert.LessOrEqual(t, resp.Score, 100)
}

func TestEvaluateForbiddenPerformsNoWrite(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{content: goodEvaluation}
	m := newTestManager(repo, provider)
	s := createTestSession(t, m, "u1", 3)

	_, err := m.EvaluateAnswer(context.Background(), s.ID, "u2", &models.EvaluateAnswerRequest{
		QuestionID:   "q1",
		QuestionText: "Tell me about yourself.",
		Answer:       "Intruder answer.",
	})
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Zero(t, provider.calls, "ownership must be checked before the AI call")
	assert.Zero(t, repo.updates)
}

func TestCompleteComputesRoundedMean(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{content: threeQuestions})
	s := createTestSession(t, m, "u1", 3)
	_, err := m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	require.NoError(t, err)

	scores := []int{80, 71, 40}
	for i, score := range scores {
		repo.sessions[s.ID].Answers[[]string{"q1", "q2", "q3"}[i]] = models.AnswerEvaluation{
			QuestionID: []string{"q1", "q2", "q3"}[i],
			Score:      score,
		}
	}

	completed, err := m.Complete(context.Background(), s.ID, "u1", 480)
	require.NoError(t, err)

	// (80 + 71 + 40) / 3 = 63.67 -> 64
	assert.Equal(t, 64, completed.OverallScore)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Equal(t, "8m 0s", completed.Duration)
	require.NotNil(t, completed.CompletedAt)

	// q1 scored >= 80 -> strength; q3 scored < 50 -> improvement
	assert.NotEmpty(t, completed.Strengths)
	require.NotEmpty(t, completed.Improvements)
	assert.Contains(t, completed.Improvements[0], "Describe a conflict")
}

func TestCompleteWithNoAnswersScoresZero(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{})
	s := createTestSession(t, m, "u1", 3)

	completed, err := m.Complete(context.Background(), s.ID, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, completed.OverallScore)
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{})
	s := createTestSession(t, m, "u1", 3)

	_, err := m.Complete(context.Background(), s.ID, "u1", 60)
	require.NoError(t, err)

	_, err = m.Complete(context.Background(), s.ID, "u1", 60)
	assert.Equal(t, KindInvalidState, KindOf(err))

	err = m.Cancel(context.Background(), s.ID, "u1")
	assert.Equal(t, KindInvalidState, KindOf(err))

	cancelled := createTestSession(t, m, "u1", 3)
	require.NoError(t, m.Cancel(context.Background(), cancelled.ID, "u1"))
	_, err = m.Complete(context.Background(), cancelled.ID, "u1", 60)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestCompleteRejectsNegativeElapsed(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{})
	s := createTestSession(t, m, "u1", 3)

	_, err := m.Complete(context.Background(), s.ID, "u1", -5)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestListForUserSummaries(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{})
	active := createTestSession(t, m, "u1", 3)
	done := createTestSession(t, m, "u1", 2)
	createTestSession(t, m, "someone-else", 1)

	_, err := m.Complete(context.Background(), done.ID, "u1", 90)
	require.NoError(t, err)

	summaries, err := m.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	for _, summary := range summaries {
		switch summary.ID {
		case active.ID:
			assert.Nil(t, summary.OverallScore, "active sessions expose no score")
		case done.ID:
			require.NotNil(t, summary.OverallScore)
		default:
			t.Fatalf("unexpected session %s in list", summary.ID)
		}
	}
}

func TestFullSessionRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{content: threeQuestions}
	m := newTestManager(repo, provider)

	s := createTestSession(t, m, "u1", 3)

	resp, err := m.GetOrMaterializeQuestions(context.Background(), s.ID, "u1")
	require.NoError(t, err)
	require.Len(t, resp.Questions, 3)

	provider.content = goodEvaluation
	for _, q := range resp.Questions {
		_, err := m.EvaluateAnswer(context.Background(), s.ID, "u1", &models.EvaluateAnswerRequest{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Answer:       "An answer.",
		})
		require.NoError(t, err)
	}

	completed, err := m.Complete(context.Background(), s.ID, "u1", 120)
	require.NoError(t, err)

	assert.Len(t, completed.Questions, 3)
	assert.Len(t, completed.Answers, 3)
	assert.Equal(t, 80, completed.OverallScore, "all answers scored 80")
}

func TestEmptyAnswerStillScores(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeProvider{content: `{
		"feedback": "The question was skipped.",
		"score": 0,
		"key_points": [{"text": "No content to assess", "met": false}]
	}`})
	s := createTestSession(t, m, "u1", 3)

	resp, err := m.EvaluateAnswer(context.Background(), s.ID, "u1", &models.EvaluateAnswerRequest{
		QuestionID:   "q1",
		QuestionText: "Tell me about yourself.",
		Answer:       "",
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.Score, 0)
	assert.LessOrEqual(t, resp.Score, 100)
}
