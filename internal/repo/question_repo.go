package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/solpipe/internal/model"
	"github.com/xxxsen/solpipe/internal/pkg/dbutil"
	"github.com/xxxsen/solpipe/internal/question"
)

var questionColumns = []string{
	"project_id", "question_hash", "question_id", "opportunity_id", "question_file_id",
	"section_id", "section_title", "section_description",
	"question_original_text", "question_normalized", "details", "ctime", "mtime",
}

type QuestionRepo struct {
	db *sql.DB
}

func NewQuestionRepo(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// InsertIfAbsent writes the record only when (project_id, question_hash) is
// free. An occupied slot is reported as PutDuplicate, never as an error.
func (r *QuestionRepo) InsertIfAbsent(ctx context.Context, rec *model.QuestionRecord) (question.PutOutcome, error) {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return 0, fmt.Errorf("marshal question details: %w", err)
	}
	data := map[string]interface{}{
		"project_id":             rec.ProjectID,
		"question_hash":          rec.QuestionHash,
		"question_id":            rec.QuestionID,
		"opportunity_id":         rec.OpportunityID,
		"question_file_id":       rec.QuestionFileID,
		"section_id":             rec.SectionID,
		"section_title":          rec.SectionTitle,
		"section_description":    rec.SectionDescription,
		"question_original_text": rec.QuestionOriginalText,
		"question_normalized":    rec.QuestionNormalized,
		"details":                string(details),
		"ctime":                  rec.Ctime,
		"mtime":                  rec.Mtime,
	}
	sqlStr, args, err := dbutil.BuildInsertIgnore("questions", data)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return question.PutDuplicate, nil
		}
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return question.PutDuplicate, nil
	}
	return question.PutInserted, nil
}

func (r *QuestionRepo) ListByProject(ctx context.Context, projectID string) ([]model.QuestionRecord, error) {
	where := map[string]interface{}{"project_id": projectID, "_orderby": "ctime asc, question_hash asc"}
	sqlStr, args, err := builder.BuildSelect("questions", where, questionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.QuestionRecord, 0)
	for rows.Next() {
		var item model.QuestionRecord
		var details []byte
		if err := rows.Scan(&item.ProjectID, &item.QuestionHash, &item.QuestionID, &item.OpportunityID,
			&item.QuestionFileID, &item.SectionID, &item.SectionTitle, &item.SectionDescription,
			&item.QuestionOriginalText, &item.QuestionNormalized, &details, &item.Ctime, &item.Mtime); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &item.Details); err != nil {
				return nil, fmt.Errorf("decode details of %s: %w", item.QuestionHash, err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
