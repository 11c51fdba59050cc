package rdb

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// modernc.org/sqlite registers as "sqlite", which sqlx does not know.
func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// dialect adapts the canonical query text to a driver. Queries are written
// with "?" placeholders and double-quoted identifiers. The few string
// literals in query text contain no double quotes, so the MySQL identifier
// rewrite is unambiguous.
type dialect struct {
	name       string
	driverName string
	backticks  bool
}

var dialects = map[string]dialect{
	"sqlite":   {name: "sqlite", driverName: "sqlite"},
	"postgres": {name: "postgres", driverName: "postgres"},
	"mysql":    {name: "mysql", driverName: "mysql", backticks: true},
}

// rebind rewrites a canonical query for the dialect.
func (d dialect) rebind(query string) string {
	query = sqlx.Rebind(sqlx.BindType(d.driverName), query)
	if d.backticks {
		query = strings.ReplaceAll(query, `"`, "`")
	}
	return query
}

// dateArg converts a date bound to the representation the column holds.
// SQLite stores dates as ISO text; the others take time.Time directly.
func (d dialect) dateArg(t time.Time) interface{} {
	if d.name == "sqlite" {
		return t.Format("2006-01-02")
	}
	return t
}
