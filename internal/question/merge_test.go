package question

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/solpipe/internal/model"
)

func q(text string) model.ExtractedQuestionCandidate {
	return model.ExtractedQuestionCandidate{QuestionText: text, IsRequired: model.RequirementUnknown}
}

func TestMergeGroupsByTitle(t *testing.T) {
	sections := []model.ExtractedSection{
		{Title: "Section L ", Description: "first", LocationHint: "p1", Questions: []model.ExtractedQuestionCandidate{q("Provide a staffing plan."), q("Submit resumes.")}},
		{Title: "Section M", Questions: []model.ExtractedQuestionCandidate{q("Describe evaluation approach.")}},
		{Title: "section l", Description: "second", LocationHint: "p9", Questions: []model.ExtractedQuestionCandidate{q("  provide a STAFFING plan.  "), q("Submit past performance.")}},
	}
	merged := Merge(sections)
	require.Len(t, merged, 2)
	require.Equal(t, "Section L ", merged[0].Title)
	require.Equal(t, "first", merged[0].Description)
	require.Equal(t, "p1", merged[0].LocationHint)
	texts := make([]string, 0)
	for _, item := range merged[0].Questions {
		texts = append(texts, item.QuestionText)
	}
	require.Equal(t, []string{"Provide a staffing plan.", "Submit resumes.", "Submit past performance."}, texts)
	require.Equal(t, "Section M", merged[1].Title)
}

func TestMergeIdempotent(t *testing.T) {
	sections := []model.ExtractedSection{
		{Title: "A", Questions: []model.ExtractedQuestionCandidate{q("one"), q("two")}},
		{Title: "B", Questions: []model.ExtractedQuestionCandidate{q("three")}},
		{Title: "a", Questions: []model.ExtractedQuestionCandidate{q("TWO"), q("four")}},
	}
	once := Merge(sections)
	doubled := Merge(append(append([]model.ExtractedSection{}, sections...), sections...))
	require.Equal(t, once, doubled)
	require.Equal(t, once, Merge(Flatten(once)))
}

func TestMergeEmpty(t *testing.T) {
	require.Empty(t, Merge(nil))
}
