// Package db manages named database connections and the repositories bound
// to them.
//
// Two drivers are supported through database/sql: PostgreSQL via a pgx pool
// (Postgres) and SQLite via modernc.org/sqlite (SQLite).
//
//	m := db.NewManager()
//	if _, err := m.Connect(ctx, "master", db.Params{Driver: db.Postgres, DSN: os.Getenv("DATABASE_URL")}); err != nil {
//		return err
//	}
//	m.RegisterRepository("user", func(c *db.Conn) any { return &UserRepository{Repository: db.NewRepository(c)} })
//
//	repo, err := m.Repository("user")
//
// The first connection becomes the default. Repositories use the default
// unless SetRepositoryConnection maps them elsewhere. Each repository is
// built once and reused.
//
// Queries use ? placeholders; they are rewritten to $n for PostgreSQL.
//
// Migrations run through goose:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	err := db.Migrate(ctx, conn, migrations, "schema_migrations", logger)
package db
