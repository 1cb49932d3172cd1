// Package sqlxrepos implements the domain repositories with hand-written
// SQL built with squirrel and scanned with sqlx.
package sqlxrepos

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
)

// psql builds queries with Postgres $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// orderBy applies the requested ordering, keeping only fields present in
// allowed. Ordering fields reach the SQL verbatim so anything outside the
// table's columns is dropped; def applies when nothing survives.
func orderBy(b sq.SelectBuilder, ordering []core.DBOrdering, def string, allowed []string) sq.SelectBuilder {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		for _, col := range allowed {
			if ord.Field == col {
				orderList = append(orderList, ord.String())
				break
			}
		}
	}
	if len(orderList) == 0 {
		return b.OrderBy(def)
	}
	return b.OrderBy(strings.Join(orderList, ", "))
}

// rolePrefixFilter matches employees holding any role that starts with one of
// the given prefixes, mirroring Employee.RoleStartsWith.
func rolePrefixFilter(roles []string) sq.Sqlizer {
	or := make(sq.Or, 0, len(roles))
	for _, role := range roles {
		or = append(or, sq.Expr("EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE ?)", role+"%"))
	}
	return or
}

// trapNoRowsErr translates sql.ErrNoRows to the domain's not-found error.
func trapNoRowsErr(err, notFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return err
}

// searchPattern wraps a cleaned search term for a case-insensitive LIKE match.
func searchPattern(term string) string {
	return "%" + term + "%"
}
