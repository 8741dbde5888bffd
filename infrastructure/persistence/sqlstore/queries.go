package sqlstore

// dbQuery holds one statement in every supported dialect.
type dbQuery struct {
	ID       string
	Postgres string
	SQLite   string
}

func (q dbQuery) sql(d Dialect) string {
	if d == DialectPostgres {
		return q.Postgres
	}
	return q.SQLite
}

var (
	queryInsertProject = dbQuery{
		ID: "PRJ-01",
		Postgres: `INSERT INTO project (id, user_id, name, transcription_model, vision_model, image, content, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)`,
		SQLite: `INSERT INTO project (id, user_id, name, transcription_model, vision_model, image, content, created_at, updated_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
	}

	querySelectProject = dbQuery{
		ID: "PRJ-02",
		Postgres: `SELECT id, user_id, name, transcription_model, vision_model, image, content, created_at, updated_at, version
			FROM project WHERE id = $1`,
		SQLite: `SELECT id, user_id, name, transcription_model, vision_model, image, content, created_at, updated_at, version
			FROM project WHERE id = ?`,
	}

	queryUpdateProject = dbQuery{
		ID: "PRJ-03",
		Postgres: `UPDATE project SET name = $1, transcription_model = $2, vision_model = $3, image = $4, content = $5,
			updated_at = $6, version = version + 1
			WHERE id = $7 AND user_id = $8 AND version = $9`,
		SQLite: `UPDATE project SET name = ?, transcription_model = ?, vision_model = ?, image = ?, content = ?,
			updated_at = ?, version = version + 1
			WHERE id = ? AND user_id = ? AND version = ?`,
	}

	queryProjectOwnerVersion = dbQuery{
		ID:       "PRJ-04",
		Postgres: `SELECT user_id, version FROM project WHERE id = $1`,
		SQLite:   `SELECT user_id, version FROM project WHERE id = ?`,
	}

	queryListProjects = dbQuery{
		ID: "PRJ-05",
		Postgres: `SELECT id, name, transcription_model, vision_model, image, created_at, updated_at
			FROM project WHERE user_id = $1 ORDER BY updated_at DESC, id`,
		SQLite: `SELECT id, name, transcription_model, vision_model, image, created_at, updated_at
			FROM project WHERE user_id = ? ORDER BY updated_at DESC, id`,
	}

	queryDeleteProject = dbQuery{
		ID:       "PRJ-06",
		Postgres: `DELETE FROM project WHERE id = $1 AND user_id = $2`,
		SQLite:   `DELETE FROM project WHERE id = ? AND user_id = ?`,
	}

	queryCreateMigrationsTable = dbQuery{
		ID: "MIG-01",
		Postgres: `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		SQLite: `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`,
	}

	queryCurrentMigration = dbQuery{
		ID:       "MIG-02",
		Postgres: `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
		SQLite:   `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	}

	queryRecordMigration = dbQuery{
		ID:       "MIG-03",
		Postgres: `INSERT INTO schema_migrations (version) VALUES ($1)`,
		SQLite:   `INSERT INTO schema_migrations (version) VALUES (?)`,
	}
)
