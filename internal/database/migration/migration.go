package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_folders",
		SQL: `CREATE TABLE IF NOT EXISTS folders (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name                 TEXT        NOT NULL,
  parent_id            UUID        REFERENCES folders (id),
  assigned_standard_id UUID,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_folders_parent",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders (parent_id);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  folder_id            UUID        NOT NULL REFERENCES folders (id),
  filename             TEXT        NOT NULL,
  content_key          TEXT        NOT NULL,
  size                 BIGINT      NOT NULL CHECK (size >= 0),
  content_type         TEXT        NOT NULL,
  override_standard_id UUID,
  archived             BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_folder",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_folder ON documents (folder_id);`,
	},
	{
		Name: "create_table_standards",
		SQL: `CREATE TABLE IF NOT EXISTS standards (
  id                 UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name               TEXT        NOT NULL,
  version            INT         NOT NULL,
  predecessor_id     UUID        REFERENCES standards (id),
  source_document_id UUID        NOT NULL REFERENCES documents (id),
  promoted_by        TEXT        NOT NULL,
  rules              JSONB       NOT NULL,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (source_document_id, version)
);`,
	},
	{
		Name: "create_table_validation_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS validation_jobs (
  id                   UUID        PRIMARY KEY,
  document_id          UUID        NOT NULL REFERENCES documents (id),
  content_key          TEXT        NOT NULL,
  resolved_standard_id UUID        REFERENCES standards (id),
  state                TEXT        NOT NULL CHECK (state IN ('queued','running','succeeded','failed','skipped')),
  attempts             INT         NOT NULL DEFAULT 0,
  worker_id            TEXT,
  enqueued_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  next_attempt_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  claim_expires_at     TIMESTAMPTZ,
  started_at           TIMESTAMPTZ,
  finished_at          TIMESTAMPTZ,
  last_error           TEXT
);`,
	},
	{
		Name: "create_index_validation_jobs_document_state",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_validation_jobs_document_state ON validation_jobs (document_id, state);`,
	},
	{
		Name: "create_index_validation_jobs_due",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_validation_jobs_due ON validation_jobs (state, next_attempt_at);`,
	},
	{
		Name: "create_table_compliance_reports",
		SQL: `CREATE TABLE IF NOT EXISTS compliance_reports (
  id               UUID        PRIMARY KEY,
  job_id           UUID        NOT NULL REFERENCES validation_jobs (id),
  document_id      UUID        NOT NULL REFERENCES documents (id),
  standard_id      UUID        NOT NULL REFERENCES standards (id),
  standard_version INT         NOT NULL,
  verdict          TEXT        NOT NULL CHECK (verdict IN ('compliant','non-compliant','compliant-with-warnings')),
  findings         JSONB       NOT NULL,
  generated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_compliance_reports_document",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_compliance_reports_document ON compliance_reports (document_id, generated_at DESC);`,
	},
	{
		Name: "create_table_audit_events",
		SQL: `CREATE TABLE IF NOT EXISTS audit_events (
  id          BIGSERIAL   PRIMARY KEY,
  kind        TEXT        NOT NULL,
  actor       TEXT        NOT NULL,
  entity_type TEXT        NOT NULL,
  entity_id   UUID        NOT NULL,
  payload     JSONB,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_events_entity",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_events_entity ON audit_events (entity_id, id);`,
	},
}

// EnsureMigrated checks if the 'audit_events' table (the last step) exists and
// runs the migration steps if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.audit_events') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
