package dbutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRebindsAndSwapsLimit(t *testing.T) {
	query, args := Finalize("SELECT id FROM questions WHERE project_id=? LIMIT ?,?", []interface{}{"p", 10, 20})
	require.Equal(t, "SELECT id FROM questions WHERE project_id=$1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"p", 20, 10}, args)
}

func TestBuildInsertIgnore(t *testing.T) {
	query, args, err := BuildInsertIgnore("questions", map[string]interface{}{"project_id": "p", "question_hash": "h"})
	require.NoError(t, err)
	require.Contains(t, query, "INSERT INTO questions")
	require.Contains(t, query, "$2")
	require.NotContains(t, query, "?")
	require.True(t, strings.HasSuffix(query, " ON CONFLICT DO NOTHING"))
	require.Len(t, args, 2)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.True(t, IsConflict(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(nil))
}
