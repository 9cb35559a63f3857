package dbutil

import (
	"errors"
	"regexp"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)

// Finalize turns gendry's mysql flavoured output into postgres placeholders.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	loc := limitRegex.FindStringIndex(query)
	if loc != nil {
		prefix := query[:loc[0]]
		qCount := strings.Count(prefix, "?")
		if qCount+1 < len(args) {
			args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
			query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
		}
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

// BuildInsertIgnore builds a single row insert that becomes a no-op when
// any unique constraint already holds the row.
func BuildInsertIgnore(table string, row map[string]interface{}) (string, []interface{}, error) {
	sqlStr, args, err := builder.BuildInsert(table, []map[string]interface{}{row})
	if err != nil {
		return "", nil, err
	}
	sqlStr, args = Finalize(sqlStr+" ON CONFLICT DO NOTHING", args)
	return sqlStr, args, nil
}

func IsConflict(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
