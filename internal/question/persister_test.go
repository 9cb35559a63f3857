package question

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/solpipe/internal/model"
)

// memStore emulates a conditional put: LoadOrStore is the condition.
type memStore struct {
	rows  sync.Map
	calls atomic.Int64
	fail  map[string]error
}

func (m *memStore) InsertIfAbsent(ctx context.Context, rec *model.QuestionRecord) (PutOutcome, error) {
	m.calls.Add(1)
	if err, ok := m.fail[rec.QuestionNormalized]; ok {
		return 0, err
	}
	key := rec.ProjectID + "/" + rec.QuestionHash
	if _, loaded := m.rows.LoadOrStore(key, rec); loaded {
		return PutDuplicate, nil
	}
	return PutInserted, nil
}

func (m *memStore) count() int {
	n := 0
	m.rows.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func sectionsOf(titles map[string][]string, order []string) []model.MergedSection {
	out := make([]model.MergedSection, 0, len(order))
	for _, title := range order {
		sec := model.MergedSection{Title: title, Description: title + " desc"}
		for _, text := range titles[title] {
			sec.Questions = append(sec.Questions, q(text))
		}
		out = append(out, sec)
	}
	return out
}

func TestPersistCountsAndRecords(t *testing.T) {
	store := &memStore{}
	p := NewPersister(store, 0)
	ids := 0
	p.newID = func() string {
		ids++
		return fmt.Sprintf("sec-%d", ids)
	}
	sections := sectionsOf(map[string][]string{
		"L": {"Provide a staffing plan.", "  ", "Submit resumes."},
		"M": {"provide a  STAFFING plan.", "Describe QA."},
	}, []string{"L", "M"})

	res, err := p.Persist(context.Background(), "proj-1", "opp-1", "qf-1", sections)
	require.NoError(t, err)
	require.Equal(t, PersistResult{Inserted: 3, SkippedDuplicates: 1}, res)
	require.EqualValues(t, 3, store.calls.Load())

	_, norm := Normalize("Provide a staffing plan.")
	v, ok := store.rows.Load("proj-1/" + Hash(norm))
	require.True(t, ok)
	rec := v.(*model.QuestionRecord)
	require.Equal(t, rec.QuestionHash, rec.QuestionID)
	require.Equal(t, "Provide a staffing plan.", rec.QuestionOriginalText)
	require.Equal(t, "provide a staffing plan.", rec.QuestionNormalized)
	require.Equal(t, "sec-1", rec.SectionID)
	require.Equal(t, "L", rec.SectionTitle)
	require.Equal(t, "L desc", rec.SectionDescription)
	require.Equal(t, "opp-1", rec.OpportunityID)
	require.Equal(t, "qf-1", rec.QuestionFileID)
	require.NotZero(t, rec.Ctime)
}

func TestPersistKeepsOriginalText(t *testing.T) {
	store := &memStore{}
	p := NewPersister(store, 0)
	raw := "  Provide a\n\tSTAFFING   plan. "
	sections := sectionsOf(map[string][]string{"L": {raw}}, []string{"L"})

	res, err := p.Persist(context.Background(), "proj-1", "opp-1", "qf-1", sections)
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)

	_, norm := Normalize(raw)
	v, ok := store.rows.Load("proj-1/" + Hash(norm))
	require.True(t, ok)
	rec := v.(*model.QuestionRecord)
	require.Equal(t, raw, rec.QuestionOriginalText)
	require.Equal(t, "provide a staffing plan.", rec.QuestionNormalized)
}

func TestPersistRerunSkipsExisting(t *testing.T) {
	store := &memStore{}
	p := NewPersister(store, 2)
	sections := sectionsOf(map[string][]string{"L": {"a", "b", "c"}}, []string{"L"})

	first, err := p.Persist(context.Background(), "proj", "opp", "qf", sections)
	require.NoError(t, err)
	require.Equal(t, 3, first.Inserted)

	second, err := p.Persist(context.Background(), "proj", "opp", "qf", sections)
	require.NoError(t, err)
	require.Equal(t, PersistResult{Inserted: 0, SkippedDuplicates: 3}, second)
	require.Equal(t, 3, store.count())

	other, err := p.Persist(context.Background(), "proj-2", "opp", "qf", sections)
	require.NoError(t, err)
	require.Equal(t, 3, other.Inserted)
}

func TestPersistConcurrentRunsInsertOnce(t *testing.T) {
	store := &memStore{}
	const runs = 32
	sections := sectionsOf(map[string][]string{"L": {"Provide a staffing plan.", "Submit resumes."}}, []string{"L"})

	var wg sync.WaitGroup
	results := make([]PersistResult, runs)
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = NewPersister(store, 0).Persist(context.Background(), "proj", "opp", "qf", sections)
		}(i)
	}
	wg.Wait()

	inserted, skipped := 0, 0
	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		inserted += results[i].Inserted
		skipped += results[i].SkippedDuplicates
	}
	require.Equal(t, 2, inserted)
	require.Equal(t, 2*runs-2, skipped)
	require.Equal(t, 2, store.count())
}

func TestPersistPropagatesStorageError(t *testing.T) {
	cause := errors.New("connection reset")
	store := &memStore{fail: map[string]error{"b": cause}}
	sections := sectionsOf(map[string][]string{"L": {"a", "b"}}, []string{"L"})

	_, err := NewPersister(store, 0).Persist(context.Background(), "proj", "opp", "qf", sections)
	require.ErrorIs(t, err, cause)
}

func TestPersistFreshSectionIDs(t *testing.T) {
	store := &memStore{}
	sections := sectionsOf(map[string][]string{"L": {"a"}, "M": {"b"}}, []string{"L", "M"})
	_, err := NewPersister(store, 0).Persist(context.Background(), "proj", "opp", "qf", sections)
	require.NoError(t, err)

	sectionIDs := map[string]struct{}{}
	store.rows.Range(func(_, v any) bool {
		sectionIDs[v.(*model.QuestionRecord).SectionID] = struct{}{}
		return true
	})
	require.Len(t, sectionIDs, 2)
}
