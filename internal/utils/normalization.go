package utils

import "strings"

func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func NormalizeDifficulty(difficulty string) string {
	return strings.ToLower(strings.TrimSpace(difficulty))
}

// StripFences removes a surrounding markdown code fence from model
// output, if present.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// drop the opening fence line (possibly with a language tag)
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
