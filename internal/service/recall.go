package service

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/jamdeck/internal/database/repository"
)

// Recall suggests past style prompts for the one being typed. Candidates come
// from the history log; ranking is normalized levenshtein similarity against
// the typed fragment.
type Recall struct {
	History *repository.SessionRepo
}

// Suggestion is a past prompt with its similarity score in [0,1].
type Suggestion struct {
	Text  string
	Score float64
}

// Suggest returns up to limit past prompts ranked by similarity to input.
// Empty input returns the most recent prompts unranked. Prompts equal to the
// input are skipped; there is nothing to suggest there.
func (r *Recall) Suggest(ctx context.Context, input string, limit int) ([]Suggestion, error) {
	joined, err := r.History.DistinctStyles(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []Suggestion
	for _, row := range joined {
		// History stores the comma-joined styles field; individual prompts
		// are its segments. Embedded commas in a prompt split here too, a
		// consequence of the unescaped wire format.
		for _, text := range strings.Split(row, ",") {
			text = strings.TrimSpace(text)
			if text == "" || text == input {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, Suggestion{Text: text, Score: similarity(input, text)})
		}
	}

	if input != "" {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// similarity is 1 - dist/maxlen over lowercased text, clamped to [0,1].
func similarity(a, b string) float64 {
	if a == "" {
		return 0
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	s := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
	if s < 0 {
		return 0
	}
	return s
}
