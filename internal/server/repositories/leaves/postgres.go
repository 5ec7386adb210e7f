package leaves

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/accessconsole/internal/dbx"
)

// NewPostgresRepository returns a Repository for PostgreSQL (pgx), with
// placeholders rewritten to $1, $2, ...
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, bind: numbered}
}

// numbered replaces each ? in query with $N. The queries in this package
// never carry ? inside string literals.
func numbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c != '?' {
			b.WriteRune(c)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
