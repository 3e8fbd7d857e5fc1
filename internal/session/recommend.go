package session

import (
	"context"
	"fmt"
	"math"
	"sort"

	"prepwise/interview/internal/models"
)

// Recommendations derives practice suggestions from the caller's
// completed sessions: one per category whose mean score falls below
// the threshold, plus a fallback when no weak category exists. Purely
// derived, never persisted; results are memoized briefly.
func (m *Manager) Recommendations(ctx context.Context, callerID string) ([]models.Recommendation, error) {
	if callerID == "" {
		return nil, &Error{Kind: KindUnauthenticated, Message: "caller identity is required"}
	}

	if cached, ok := m.recos.Get(callerID); ok {
		return cached, nil
	}

	sessions, err := m.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "failed to list sessions", Err: err}
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for i := range sessions {
		if sessions[i].Status != models.StatusCompleted {
			continue
		}
		sums[sessions[i].Category] += sessions[i].OverallScore
		counts[sessions[i].Category]++
	}

	if len(counts) == 0 {
		items := []models.Recommendation{{
			Message: "Complete your first practice interview to get personalized recommendations.",
		}}
		m.recos.Set(callerID, items)
		return items, nil
	}

	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	items := []models.Recommendation{}
	for _, category := range categories {
		mean := float64(sums[category]) / float64(counts[category])
		if mean >= recommendationThreshold {
			continue
		}
		items = append(items, models.Recommendation{
			Category:     category,
			AverageScore: math.Round(mean*10) / 10,
			Message:      fmt.Sprintf("Your %s average is %.0f. Schedule more %s practice to bring it up.", category, mean, category),
		})
	}

	if len(items) == 0 {
		items = append(items, models.Recommendation{
			Message: "You're scoring well across the board. Try a harder difficulty or a new category.",
		})
	}

	m.recos.Set(callerID, items)
	return items, nil
}
