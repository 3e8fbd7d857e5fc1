package models

import "time"

// Session status values. Forward-only: an active session may become
// completed or cancelled, and both of those are terminal.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Question is one generated interview question. Content is immutable
// once the session's question list has been materialized.
type Question struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

// KeyPoint is a single expected-content judgment on an answer.
type KeyPoint struct {
	Text string `bson:"text" json:"text"`
	Met  bool   `bson:"met" json:"met"`
}

// AnswerEvaluation holds the AI evaluation of one answered question.
// Re-answering a question replaces its entry.
type AnswerEvaluation struct {
	QuestionID   string     `bson:"question_id" json:"question_id"`
	QuestionText string     `bson:"question_text" json:"question_text"`
	Answer       string     `bson:"answer" json:"answer"`
	Feedback     string     `bson:"feedback" json:"feedback"`
	Score        int        `bson:"score" json:"score"` // 0-100
	KeyPoints    []KeyPoint `bson:"key_points" json:"key_points"`
	EvaluatedAt  time.Time  `bson:"evaluated_at" json:"evaluated_at"`
}

// InterviewSession is the central record tracking one practice attempt.
// Questions start empty and are filled exactly once on first read.
// Aggregate fields are only meaningful once Status is completed.
type InterviewSession struct {
	ID            string                      `bson:"_id" json:"id"`
	OwnerID       string                      `bson:"owner_id" json:"owner_id"`
	Category      string                      `bson:"category" json:"category"`
	Difficulty    string                      `bson:"difficulty" json:"difficulty"`
	QuestionCount int                         `bson:"question_count" json:"question_count"`
	Status        string                      `bson:"status" json:"status"`
	Questions     []Question                  `bson:"questions" json:"questions"`
	Answers       map[string]AnswerEvaluation `bson:"answers" json:"answers"`
	OverallScore  int                         `bson:"overall_score" json:"overall_score"`
	Strengths     []string                    `bson:"strengths" json:"strengths,omitempty"`
	Improvements  []string                    `bson:"improvements" json:"improvements,omitempty"`
	Duration      string                      `bson:"duration" json:"duration,omitempty"`
	CreatedAt     time.Time                   `bson:"created_at" json:"created_at"`
	CompletedAt   *time.Time                  `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// DurationMinutes maps the question count to the allotted session
// length.
func (s *InterviewSession) DurationMinutes() int {
	return s.QuestionCount * MinutesPerQuestion
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	Difficulty    string    `json:"difficulty"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"question_count"`
	OverallScore  *int      `json:"overall_score,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Summary projects the session into its list representation. The score
// is absent unless the session completed.
func (s *InterviewSession) Summary() SessionSummary {
	summary := SessionSummary{
		ID:            s.ID,
		Category:      s.Category,
		Difficulty:    s.Difficulty,
		Status:        s.Status,
		QuestionCount: s.QuestionCount,
		Duration:      s.Duration,
		CreatedAt:     s.CreatedAt,
	}
	if s.Status == StatusCompleted {
		score := s.OverallScore
		summary.OverallScore = &score
	}
	return summary
}

// Recommendation is a derived practice suggestion; never persisted.
type Recommendation struct {
	Category     string  `json:"category"`
	AverageScore float64 `json:"average_score,omitempty"`
	Message      string  `json:"message"`
}
