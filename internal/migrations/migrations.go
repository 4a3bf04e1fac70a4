package migrations

import (
	"database/sql"
	"embed"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Dir is the source directory, used when creating new migration files.
const Dir = "internal/migrations"

// Open connects through lib/pq and prepares goose to read the embedded files.
func Open(dsn string) (*sql.DB, error) {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	return sql.Open("postgres", dsn)
}

// Up applies every pending migration.
func Up(dsn string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, ".")
}
