package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/solpipe/internal/chunk"
	"github.com/xxxsen/solpipe/internal/filestore"
	"github.com/xxxsen/solpipe/internal/model"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
	"github.com/xxxsen/solpipe/internal/question"
)

type ExtractionInput struct {
	QuestionFileID string `json:"questionFileId"`
	ProjectID      string `json:"projectId"`
	OpportunityID  string `json:"opportunityId"`
	TextFileKey    string `json:"textFileKey"`
}

type ExtractionOutput struct {
	Count     int  `json:"count"`
	Cancelled bool `json:"cancelled"`
}

type ExtractionOptions struct {
	MaxChars           int
	OverlapChars       int
	PersistConcurrency int
}

type ExtractionService struct {
	files     QuestionFileStore
	texts     filestore.Store
	extractor ChunkExtractor
	persister *question.Persister
	opts      ExtractionOptions
	now       func() time.Time
}

func NewExtractionService(files QuestionFileStore, texts filestore.Store, extractor ChunkExtractor, questions question.QuestionStore, opts ExtractionOptions) *ExtractionService {
	return &ExtractionService{
		files:     files,
		texts:     texts,
		extractor: extractor,
		persister: question.NewPersister(questions, opts.PersistConcurrency),
		opts:      opts,
		now:       time.Now,
	}
}

var extractionRequired = []string{"questionFileId", "projectId", "opportunityId", "textFileKey"}

func (in *ExtractionInput) validate() error {
	return appErr.MissingFields(extractionRequired, map[string]string{
		"questionFileId": in.QuestionFileID,
		"projectId":      in.ProjectID,
		"opportunityId":  in.OpportunityID,
		"textFileKey":    in.TextFileKey,
	})
}

// Run extracts, merges and persists the questions of one question file.
// Chunk failures are logged and skipped. Only input, cancellation lookup,
// text loading, persistence and status errors are returned.
func (s *ExtractionService) Run(ctx context.Context, in ExtractionInput) (*ExtractionOutput, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("question_file_id", in.QuestionFileID),
		zap.String("project_id", in.ProjectID),
		zap.String("opportunity_id", in.OpportunityID),
	)
	cancelled, err := s.files.IsCancelled(ctx, in.ProjectID, in.OpportunityID, in.QuestionFileID)
	if err != nil {
		return nil, fmt.Errorf("check cancellation of %s: %w", in.QuestionFileID, err)
	}
	if cancelled {
		logger.Info("question file cancelled, skip extraction")
		return &ExtractionOutput{Count: 0, Cancelled: true}, nil
	}
	out, err := s.process(ctx, logger, in)
	if err != nil {
		s.markFailed(ctx, logger, in.QuestionFileID, err)
		return nil, err
	}
	return out, nil
}

func (s *ExtractionService) process(ctx context.Context, logger *zap.Logger, in ExtractionInput) (*ExtractionOutput, error) {
	text, err := filestore.ReadText(ctx, s.texts, in.TextFileKey)
	if err != nil {
		return nil, fmt.Errorf("load text %s: %w", in.TextFileKey, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, appErr.New(appErr.KindEmptyChunkSource, "text file %s is empty", in.TextFileKey)
	}
	chunks := chunk.Split(text, s.opts.MaxChars, s.opts.OverlapChars)
	logger.Info("extraction started", zap.Int("text_len", len(text)), zap.Int("chunks", len(chunks)))

	sections := make([]model.ExtractedSection, 0)
	failed := 0
	for _, c := range chunks {
		res, err := s.extractor.Extract(ctx, c.Content, c.Ordinal, c.TotalChunks)
		if err != nil {
			failed++
			logger.Warn("chunk extraction failed, skip",
				zap.Int("ordinal", c.Ordinal),
				zap.Int("total_chunks", c.TotalChunks),
				zap.String("kind", string(appErr.KindOf(err))),
				zap.Error(err))
			continue
		}
		sections = append(sections, res.Sections...)
	}
	merged := question.Merge(sections)

	res, err := s.persister.Persist(ctx, in.ProjectID, in.OpportunityID, in.QuestionFileID, merged)
	if err != nil {
		return nil, err
	}
	if err := s.files.MarkProcessed(ctx, in.QuestionFileID, res.Inserted, s.now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("mark %s processed: %w", in.QuestionFileID, err)
	}
	logger.Info("extraction finished",
		zap.Int("chunks", len(chunks)),
		zap.Int("failed_chunks", failed),
		zap.Int("sections", len(merged)),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped_duplicates", res.SkippedDuplicates))
	return &ExtractionOutput{Count: res.Inserted}, nil
}

func (s *ExtractionService) markFailed(ctx context.Context, logger *zap.Logger, id string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.files.MarkFailed(ctx, id, cause.Error(), s.now().UnixMilli()); err != nil {
		logger.Error("mark question file failed", zap.Error(err), zap.NamedError("cause", cause))
	}
}
