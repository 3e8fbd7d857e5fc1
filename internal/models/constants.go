package models

// contains all supported interview categories (in lowercase)
var SupportedCategories = map[string]bool{
	"hr":            true,
	"technical":     true,
	"behavioral":    true,
	"system design": true,
}

// contains all valid difficulty levels (in lowercase)
var ValidDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

func SupportedCategoriesList() []string {
	return []string{"HR", "Technical", "Behavioral", "System Design"}
}

func ValidDifficultiesList() []string {
	return []string{"Easy", "Medium", "Hard"}
}

// MaxQuestionCount caps a single session so question generation stays
// within one model call.
const MaxQuestionCount = 20

// MinutesPerQuestion derives the session duration from the question
// count; duration is never stored independently.
const MinutesPerQuestion = 5
