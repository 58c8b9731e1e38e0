// Package repomanager vends repository implementations bound to a database
// handle (or transaction) and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/articles"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/comments"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to the provided DBTX, so a
// service can run several repositories against one transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Articles(db dbx.DBTX) articles.Repository
	Comments(db dbx.DBTX) comments.Repository
}
