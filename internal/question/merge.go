package question

import (
	"strings"

	"github.com/xxxsen/solpipe/internal/model"
)

func sectionKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func questionKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Merge folds the sections of every chunk into one section per title. The
// first section seen for a title supplies its description and location hint.
// Questions repeated by overlapping chunks collapse to their first occurrence.
func Merge(sections []model.ExtractedSection) []model.MergedSection {
	index := make(map[string]int)
	seen := make([]map[string]struct{}, 0)
	out := make([]model.MergedSection, 0)
	for _, sec := range sections {
		key := sectionKey(sec.Title)
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, model.MergedSection{
				Title:        sec.Title,
				Description:  sec.Description,
				LocationHint: sec.LocationHint,
				Questions:    make([]model.ExtractedQuestionCandidate, 0, len(sec.Questions)),
			})
			seen = append(seen, make(map[string]struct{}))
		}
		for _, q := range sec.Questions {
			qk := questionKey(q.QuestionText)
			if _, dup := seen[pos][qk]; dup {
				continue
			}
			seen[pos][qk] = struct{}{}
			out[pos].Questions = append(out[pos].Questions, q)
		}
	}
	return out
}

// Flatten turns merged sections back into extracted sections so a merge
// result can be merged again.
func Flatten(merged []model.MergedSection) []model.ExtractedSection {
	out := make([]model.ExtractedSection, 0, len(merged))
	for _, m := range merged {
		out = append(out, model.ExtractedSection(m))
	}
	return out
}
