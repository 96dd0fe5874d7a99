package session

import "strings"

// bulletCutset is stripped from both ends of every question line
const bulletCutset = "•- "

// ParseQuestions turns the oracle's reply into at most MaxQuestions questions,
// one per non-blank line with bullets removed. Answers are keyed by question
// text, so repeated lines are kept once.
func ParseQuestions(raw string) []string {
	var questions []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Trim(line, bulletCutset)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		questions = append(questions, line)
		if len(questions) == MaxQuestions {
			break
		}
	}
	return questions
}

// uniqueQuestions drops repeats, keeping the first occurrence
func uniqueQuestions(questions []string) []string {
	if len(questions) == 0 {
		return nil
	}
	out := make([]string, 0, len(questions))
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
