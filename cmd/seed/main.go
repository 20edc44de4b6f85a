package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"arbor/internal/config"
	models "arbor/internal/domain/models/vfs"
	services "arbor/internal/domain/services/vfs"
	"arbor/internal/repository/postgres"
	postgresVFS "arbor/internal/repository/postgres/vfs"
	serviceVFS "arbor/internal/service/vfs"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo content")
	seedUser := flag.String("seed-user", "00000000-0000-0000-0000-000000000001", "Owner id for the demo namespace")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: no destructive operations against production tables.
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Preparing database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping tables...")
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+tables.Nodes+" CASCADE"); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	nodeRepo := postgresVFS.NewNodeRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	namespace := serviceVFS.NewNamespaceService(nodeRepo, txManager, logger)

	if err := seedDemoNamespace(ctx, namespace, *seedUser); err != nil {
		log.Fatalf("Failed to seed demo namespace: %v", err)
	}
	log.Println("✅ Demo namespace seeded")
}

// runSchema creates the nodes table. Both sibling-uniqueness constraints live
// here; every multi-step reorder in the service layer depends on them being
// checked per statement (plain UNIQUE, not deferred).
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	createNodes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Nodes + ` (
			id UUID PRIMARY KEY,
			namespace_key TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			parent_path TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL,
			is_directory BOOLEAN NOT NULL DEFAULT FALSE,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			ordinal INTEGER NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			content_type TEXT NOT NULL DEFAULT '',
			size BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(namespace_key, parent_path, filename),
			UNIQUE(namespace_key, parent_path, ordinal)
		)
	`
	if _, err := pool.Exec(ctx, createNodes); err != nil {
		return err
	}

	createIdx := `
		CREATE INDEX IF NOT EXISTS ` + tables.Nodes + `_parent_idx
		ON ` + tables.Nodes + ` (namespace_key, parent_path)
	`
	if _, err := pool.Exec(ctx, createIdx); err != nil {
		return err
	}
	return nil
}

type seedFile struct {
	path    string
	content string
}

// seedDemoNamespace writes a small browsable tree through the real service
// so the seeded rows obey the same invariants as user-created ones.
func seedDemoNamespace(ctx context.Context, namespace services.Namespace, userID string) error {
	viewer := models.Viewer{UserID: userID}
	ns := userID

	for _, dir := range []string{"notes", "notes/daily", "projects"} {
		if err := namespace.Mkdir(ctx, viewer, ns, dir); err != nil {
			return err
		}
	}

	files := []seedFile{
		{"welcome.md", "Welcome to your namespace.\n\nEverything here is yours alone until you make it public."},
		{"notes/ideas.md", "- ordered folders\n- split and join notes\n- share a subtree"},
		{"notes/daily/2026-08-25.md", "Seeded on first run."},
		{"projects/roadmap.md", "## Next\n\nImport, export, full-text ranking."},
	}
	for _, f := range files {
		if _, err := namespace.Save(ctx, viewer, ns, &services.SaveRequest{
			Path:    f.path,
			Content: f.content,
		}); err != nil {
			return err
		}
	}

	log.Printf("  ✓ Seeded %d directories, %d files for %s", 3, len(files), userID)
	return nil
}
