package models

// CreateSessionResponse returns the id of a freshly created session.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// SessionQuestionsResponse is returned by the get/materialize
// operation.
type SessionQuestionsResponse struct {
	SessionID       string     `json:"session_id"`
	Category        string     `json:"category"`
	Difficulty      string     `json:"difficulty"`
	Questions       []Question `json:"questions"`
	TotalQuestions  int        `json:"total_questions"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
}

// EvaluationResponse carries the AI judgment of one answer.
type EvaluationResponse struct {
	QuestionID string     `json:"question_id"`
	Feedback   string     `json:"feedback"`
	Score      int        `json:"score"`
	KeyPoints  []KeyPoint `json:"key_points"`
	Degraded   bool       `json:"degraded,omitempty"`
}

// SessionListResponse wraps the owner's session summaries.
type SessionListResponse struct {
	Total int              `json:"total"`
	Items []SessionSummary `json:"items"`
}

// RecommendationsResponse wraps derived practice suggestions.
type RecommendationsResponse struct {
	Items []Recommendation `json:"items"`
}

// ScheduleListResponse wraps the owner's scheduled interviews.
type ScheduleListResponse struct {
	Total int                  `json:"total"`
	Items []ScheduledInterview `json:"items"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
