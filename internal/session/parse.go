package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"prepwise/interview/internal/models"
	"prepwise/interview/internal/utils"
)

// parseQuestions decodes the model's question-generation output into
// question records. The boundary is strict: anything that does not
// match the expected shape is an error, never a partial list.
func parseQuestions(content string, want int) ([]models.Question, error) {
	cleaned := utils.StripFences(content)

	var raw []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("question output is not a JSON array: %w", err)
	}

	if len(raw) < want {
		return nil, fmt.Errorf("model returned %d questions, wanted %d", len(raw), want)
	}
	if len(raw) > want {
		raw = raw[:want]
	}

	seen := make(map[string]bool, len(raw))
	questions := make([]models.Question, 0, len(raw))
	for i, q := range raw {
		if q.Text == "" {
			return nil, fmt.Errorf("question %d has empty text", i+1)
		}
		id := q.ID
		if id == "" || seen[id] {
			id = uuid.New().String()
		}
		seen[id] = true
		questions = append(questions, models.Question{ID: id, Text: q.Text})
	}

	return questions, nil
}

// evaluationResult is the constrained shape the evaluation prompt asks
// the model to return.
type evaluationResult struct {
	Feedback  string            `json:"feedback"`
	Score     int               `json:"score"`
	KeyPoints []models.KeyPoint `json:"key_points"`
}

// parseEvaluation decodes the model's answer-evaluation output. The
// caller degrades to a placeholder on error rather than failing the
// request.
func parseEvaluation(content string) (*evaluationResult, error) {
	cleaned := utils.StripFences(content)

	var result evaluationResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("evaluation output is not a JSON object: %w", err)
	}

	if result.Feedback == "" {
		return nil, fmt.Errorf("evaluation is missing feedback")
	}
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("evaluation score %d is out of range", result.Score)
	}
	if len(result.KeyPoints) == 0 {
		return nil, fmt.Errorf("evaluation has no key points")
	}

	return &result, nil
}
