package leaves

import "github.com/dmitrijs2005/accessconsole/internal/dbx"

// NewSQLiteRepository returns a Repository for SQLite, which takes the
// queries' ? placeholders as they are.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}
