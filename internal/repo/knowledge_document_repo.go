package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/solpipe/internal/model"
	"github.com/xxxsen/solpipe/internal/pkg/dbutil"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
)

type KnowledgeDocumentRepo struct {
	db *sql.DB
}

func NewKnowledgeDocumentRepo(db *sql.DB) *KnowledgeDocumentRepo {
	return &KnowledgeDocumentRepo{db: db}
}

func (r *KnowledgeDocumentRepo) Create(ctx context.Context, doc *model.KnowledgeDocument) error {
	data := map[string]interface{}{
		"id":                doc.ID,
		"org_id":            doc.OrgID,
		"knowledge_base_id": doc.KnowledgeBaseID,
		"name":              doc.Name,
		"indexed":           doc.Indexed,
		"ctime":             doc.Ctime,
		"mtime":             doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("knowledge_documents", []map[string]interface{}{data})
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

func (r *KnowledgeDocumentRepo) GetByID(ctx context.Context, id string) (*model.KnowledgeDocument, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("knowledge_documents", where, []string{
		"id", "org_id", "knowledge_base_id", "name", "indexed", "ctime", "mtime",
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
	var doc model.KnowledgeDocument
	if err := rows.Scan(&doc.ID, &doc.OrgID, &doc.KnowledgeBaseID, &doc.Name, &doc.Indexed, &doc.Ctime, &doc.Mtime); err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarkIndexed sets the flag. Setting it again is a no-op that still succeeds.
func (r *KnowledgeDocumentRepo) MarkIndexed(ctx context.Context, id string, mtime int64) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{
		"indexed": true,
		"mtime":   mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("knowledge_documents", where, update)
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

func (r *KnowledgeDocumentRepo) Delete(ctx context.Context, id string) error {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildDelete("knowledge_documents", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
