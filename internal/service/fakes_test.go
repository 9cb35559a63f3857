package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xxxsen/solpipe/internal/model"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
	"github.com/xxxsen/solpipe/internal/question"
)

type memTexts struct {
	objects map[string]string
	opened  int
}

func (m *memTexts) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[key] = string(data)
	return nil
}

func (m *memTexts) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.opened++
	v, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", key, appErr.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader([]byte(v))), nil
}

type fileState struct {
	status  string
	total   int
	message string
}

type memFiles struct {
	cancelled map[string]bool
	lookupErr error
	markErr   error
	states    map[string]*fileState
}

func newMemFiles() *memFiles {
	return &memFiles{cancelled: map[string]bool{}, states: map[string]*fileState{}}
}

func fileScope(projectID, opportunityID, id string) string {
	return projectID + "/" + opportunityID + "/" + id
}

func (m *memFiles) IsCancelled(ctx context.Context, projectID, opportunityID, id string) (bool, error) {
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	return m.cancelled[fileScope(projectID, opportunityID, id)], nil
}

func (m *memFiles) MarkProcessed(ctx context.Context, id string, totalQuestions int, mtime int64) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.states[id] = &fileState{status: model.QuestionFileStatusProcessed, total: totalQuestions}
	return nil
}

func (m *memFiles) MarkFailed(ctx context.Context, id string, message string, mtime int64) error {
	m.states[id] = &fileState{status: model.QuestionFileStatusFailed, message: message}
	return nil
}

type memQuestions struct {
	mu   sync.Mutex
	rows map[string]*model.QuestionRecord
	err  error
}

func (m *memQuestions) InsertIfAbsent(ctx context.Context, rec *model.QuestionRecord) (question.PutOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.rows == nil {
		m.rows = map[string]*model.QuestionRecord{}
	}
	key := rec.ProjectID + "/" + rec.QuestionHash
	if _, ok := m.rows[key]; ok {
		return question.PutDuplicate, nil
	}
	m.rows[key] = rec
	return question.PutInserted, nil
}

// scriptedExtractor answers per chunk ordinal, failing the listed ordinals.
type scriptedExtractor struct {
	fail    map[int]bool
	answer  func(chunk string, ordinal int) []model.ExtractedSection
	seen    []int
	totalIn []int
}

func (s *scriptedExtractor) Extract(ctx context.Context, chunk string, ordinal, totalChunks int) (*model.ExtractionResult, error) {
	s.seen = append(s.seen, ordinal)
	s.totalIn = append(s.totalIn, totalChunks)
	if s.fail[ordinal] {
		return nil, appErr.New(appErr.KindSchemaViolation, "chunk %d", ordinal)
	}
	return &model.ExtractionResult{Sections: s.answer(chunk, ordinal)}, nil
}

type memDocs struct {
	docs     map[string]*model.KnowledgeDocument
	getErr   error
	indexed  map[string]int
	markErrs error
}

func newMemDocs(ids ...string) *memDocs {
	m := &memDocs{docs: map[string]*model.KnowledgeDocument{}, indexed: map[string]int{}}
	for _, id := range ids {
		m.docs[id] = &model.KnowledgeDocument{ID: id}
	}
	return m
}

func (m *memDocs) GetByID(ctx context.Context, id string) (*model.KnowledgeDocument, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return doc, nil
}

func (m *memDocs) MarkIndexed(ctx context.Context, id string, mtime int64) error {
	if m.markErrs != nil {
		return m.markErrs
	}
	m.indexed[id]++
	m.docs[id].Indexed = true
	return nil
}

type memVectors struct {
	items   map[string]*model.IndexedChunk
	upserts int
}

func (m *memVectors) Upsert(ctx context.Context, item *model.IndexedChunk) error {
	m.upserts++
	if m.items == nil {
		m.items = map[string]*model.IndexedChunk{}
	}
	m.items[item.ChunkKey] = item
	return nil
}

type countingEmbedder struct {
	calls int
	texts []string
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	c.texts = append(c.texts, text)
	if c.err != nil {
		return nil, c.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (c *countingEmbedder) ModelName() string { return "embed-test" }

var errBoom = errors.New("boom")

func questionsOf(texts ...string) []model.ExtractedQuestionCandidate {
	out := make([]model.ExtractedQuestionCandidate, 0, len(texts))
	for _, t := range texts {
		out = append(out, model.ExtractedQuestionCandidate{QuestionText: t, IsRequired: model.RequirementUnknown})
	}
	return out
}

func paragraphs(n int, size int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("P%02d ", i)+strings.Repeat("x", size-4))
	}
	return strings.Join(parts, "\n\n")
}
