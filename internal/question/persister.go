package question

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/solpipe/internal/model"
)

// PutOutcome is the result of a conditional insert that did not fail.
type PutOutcome int

const (
	PutInserted PutOutcome = iota + 1
	PutDuplicate
)

// QuestionStore inserts a record only when no row exists at
// (ProjectID, QuestionHash). A lost condition is PutDuplicate, not an error.
type QuestionStore interface {
	InsertIfAbsent(ctx context.Context, rec *model.QuestionRecord) (PutOutcome, error)
}

type PersistResult struct {
	Inserted          int `json:"inserted"`
	SkippedDuplicates int `json:"skipped_duplicates"`
}

type Persister struct {
	store       QuestionStore
	concurrency int
	now         func() time.Time
	newID       func() string
}

// NewPersister builds a persister. concurrency <= 0 leaves writes unbounded.
func NewPersister(store QuestionStore, concurrency int) *Persister {
	return &Persister{
		store:       store,
		concurrency: concurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (p *Persister) Persist(ctx context.Context, projectID, opportunityID, questionFileID string, sections []model.MergedSection) (PersistResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("project_id", projectID), zap.String("question_file_id", questionFileID))
	now := p.now().UnixMilli()

	var result PersistResult
	seen := make(map[string]struct{})
	records := make([]*model.QuestionRecord, 0)
	for _, sec := range sections {
		sectionID := p.newID()
		for _, q := range sec.Questions {
			_, normalized := Normalize(q.QuestionText)
			if normalized == "" {
				continue
			}
			hash := Hash(normalized)
			if _, dup := seen[hash]; dup {
				result.SkippedDuplicates++
				continue
			}
			seen[hash] = struct{}{}
			records = append(records, &model.QuestionRecord{
				ProjectID:            projectID,
				QuestionID:           hash,
				OpportunityID:        opportunityID,
				QuestionFileID:       questionFileID,
				SectionID:            sectionID,
				SectionTitle:         sec.Title,
				SectionDescription:   sec.Description,
				QuestionOriginalText: q.QuestionText,
				QuestionNormalized:   normalized,
				QuestionHash:         hash,
				Details: model.QuestionDetails{
					Type:               q.Type,
					IsExplicitQuestion: q.IsExplicitQuestion,
					IsRequired:         q.IsRequired,
					Deliverable:        q.Deliverable,
					ResponseFormat:     q.ResponseFormat,
					Constraints:        q.Constraints,
				},
				Ctime: now,
				Mtime: now,
			})
		}
	}

	outcomes := make([]PutOutcome, len(records))
	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			outcome, err := p.store.InsertIfAbsent(ctx, rec)
			if err != nil {
				return fmt.Errorf("insert question %s: %w", rec.QuestionHash, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("persist questions failed", zap.Error(err))
		return PersistResult{}, err
	}
	for _, outcome := range outcomes {
		switch outcome {
		case PutInserted:
			result.Inserted++
		case PutDuplicate:
			result.SkippedDuplicates++
		}
	}
	logger.Info("questions persisted",
		zap.Int("candidates", len(records)),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped_duplicates", result.SkippedDuplicates),
	)
	return result, nil
}
