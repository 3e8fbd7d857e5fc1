package models

import (
	"strings"
	"time"
)

// CreateSessionRequest starts a new interview session. Questions are
// generated lazily, so creation itself makes no AI call.
type CreateSessionRequest struct {
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
}

// implements the Validator interface
func (r *CreateSessionRequest) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return &ErrorResponse{
			Code:    "missing_category",
			Message: "Category field is required",
		}
	}

	if !SupportedCategories[strings.ToLower(strings.TrimSpace(r.Category))] {
		return &ErrorResponse{
			Code:    "unsupported_category",
			Message: "Category not supported. Supported categories: HR, Technical, Behavioral, System Design",
		}
	}

	if strings.TrimSpace(r.Difficulty) == "" {
		return &ErrorResponse{
			Code:    "missing_difficulty",
			Message: "Difficulty field is required",
		}
	}

	if !ValidDifficulties[strings.ToLower(strings.TrimSpace(r.Difficulty))] {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: Easy, Medium, Hard",
		}
	}

	if r.QuestionCount <= 0 {
		return &ErrorResponse{
			Code:    "invalid_question_count",
			Message: "Question count must be a positive integer",
		}
	}

	if r.QuestionCount > MaxQuestionCount {
		return &ErrorResponse{
			Code:    "invalid_question_count",
			Message: "Question count must not exceed 20",
		}
	}

	return nil
}

// EvaluateAnswerRequest submits one answer for AI evaluation. The
// question text is denormalized into the stored evaluation record.
type EvaluateAnswerRequest struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
}

func (r *EvaluateAnswerRequest) Validate() error {
	if strings.TrimSpace(r.QuestionID) == "" {
		return &ErrorResponse{Code: "missing_question_id", Message: "Question ID is required"}
	}
	if strings.TrimSpace(r.QuestionText) == "" {
		return &ErrorResponse{Code: "missing_question_text", Message: "Question text is required"}
	}
	// An empty answer is allowed: skipped questions still get scored.
	return nil
}

// CompleteSessionRequest finalizes a session. The elapsed seconds come
// from the client's timer; the overall score is recomputed server-side
// and any client-supplied figure is ignored.
type CompleteSessionRequest struct {
	ElapsedSeconds int `json:"elapsed_seconds"`
}

func (r *CompleteSessionRequest) Validate() error {
	if r.ElapsedSeconds < 0 {
		return &ErrorResponse{Code: "invalid_elapsed_seconds", Message: "Elapsed seconds must not be negative"}
	}
	return nil
}

// ScheduleInterviewRequest books a future practice slot.
type ScheduleInterviewRequest struct {
	Category     string    `json:"category"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Notes        string    `json:"notes"`
}

func (r *ScheduleInterviewRequest) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return &ErrorResponse{Code: "missing_category", Message: "Category field is required"}
	}
	if !SupportedCategories[strings.ToLower(strings.TrimSpace(r.Category))] {
		return &ErrorResponse{
			Code:    "unsupported_category",
			Message: "Category not supported. Supported categories: HR, Technical, Behavioral, System Design",
		}
	}
	if r.ScheduledFor.IsZero() {
		return &ErrorResponse{Code: "missing_scheduled_for", Message: "Scheduled time is required"}
	}
	if r.ScheduledFor.Before(time.Now()) {
		return &ErrorResponse{Code: "invalid_scheduled_for", Message: "Scheduled time must be in the future"}
	}
	return nil
}
