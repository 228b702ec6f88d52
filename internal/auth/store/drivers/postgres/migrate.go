package postgres

import (
	"context"

	"github.com/202201638/security-project/internal/auth/store/drivers/postgres/migrations"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// ApplyMigrations applies any pending goose migrations from the embedded
// migrations directory. goose drives database/sql, so it gets a *sql.DB view
// of the pool that is closed again once it is done.
func (s *Store) ApplyMigrations() error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(context.Background(), db, ".")
}
