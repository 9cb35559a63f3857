package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/solpipe/internal/model"
	"github.com/xxxsen/solpipe/internal/pkg/dbutil"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
)

type QuestionFileRepo struct {
	db *sql.DB
}

func NewQuestionFileRepo(db *sql.DB) *QuestionFileRepo {
	return &QuestionFileRepo{db: db}
}

func (r *QuestionFileRepo) Create(ctx context.Context, file *model.QuestionFile) error {
	status := file.Status
	if status == "" {
		status = model.QuestionFileStatusProcessing
	}
	data := map[string]interface{}{
		"id":               file.ID,
		"project_id":       file.ProjectID,
		"opportunity_id":   file.OpportunityID,
		"status":           status,
		"cancel_requested": file.CancelRequested,
		"total_questions":  file.TotalQuestions,
		"error_message":    file.ErrorMessage,
		"ctime":            file.Ctime,
		"mtime":            file.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("question_files", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *QuestionFileRepo) GetByID(ctx context.Context, id string) (*model.QuestionFile, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("question_files", where, []string{
		"id", "project_id", "opportunity_id", "status", "cancel_requested",
		"total_questions", "error_message", "ctime", "mtime",
	})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var file model.QuestionFile
	if err := rows.Scan(&file.ID, &file.ProjectID, &file.OpportunityID, &file.Status, &file.CancelRequested,
		&file.TotalQuestions, &file.ErrorMessage, &file.Ctime, &file.Mtime); err != nil {
		return nil, err
	}
	return &file, nil
}

// IsCancelled returns appErr.ErrNotFound when the file does not belong to
// the given project and opportunity.
func (r *QuestionFileRepo) IsCancelled(ctx context.Context, projectID, opportunityID, id string) (bool, error) {
	where := map[string]interface{}{
		"id":             id,
		"project_id":     projectID,
		"opportunity_id": opportunityID,
	}
	sqlStr, args, err := builder.BuildSelect("question_files", where, []string{"cancel_requested"})
	if err != nil {
		return false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var cancelled bool
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&cancelled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErr.ErrNotFound
		}
		return false, err
	}
	return cancelled, nil
}

func (r *QuestionFileRepo) RequestCancel(ctx context.Context, id string, mtime int64) error {
	return r.update(ctx, id, map[string]interface{}{
		"cancel_requested": true,
		"mtime":            mtime,
	})
}

func (r *QuestionFileRepo) MarkProcessed(ctx context.Context, id string, totalQuestions int, mtime int64) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":          model.QuestionFileStatusProcessed,
		"total_questions": totalQuestions,
		"error_message":   "",
		"mtime":           mtime,
	})
}

func (r *QuestionFileRepo) MarkFailed(ctx context.Context, id string, message string, mtime int64) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        model.QuestionFileStatusFailed,
		"error_message": message,
		"mtime":         mtime,
	})
}

func (r *QuestionFileRepo) update(ctx context.Context, id string, update map[string]interface{}) error {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildUpdate("question_files", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
