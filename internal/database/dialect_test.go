package database

import (
	"testing"
)

func TestDialectNames(t *testing.T) {
	tests := []struct {
		name         string
		dialect      Dialect
		driver       string
		subdir       string
		lastInsertID bool
	}{
		{name: "SQLite", dialect: NewSQLiteDialect(), driver: "sqlite3", subdir: "sqlite", lastInsertID: true},
		{name: "PostgreSQL", dialect: NewPostgresDialect(), driver: "postgres", subdir: "postgres", lastInsertID: false},
		{name: "MySQL", dialect: NewMySQLDialect(), driver: "mysql", subdir: "mysql", lastInsertID: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.subdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.subdir)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO users (name, email) VALUES (?, ?)",
			expected: "INSERT INTO users (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE users SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE users SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUpsertQuery(t *testing.T) {
	columns := []string{"user_id", "video_id", "position_ms"}
	keys := []string{"user_id", "video_id"}

	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{
			name:     "SQLite",
			dialect:  NewSQLiteDialect(),
			expected: "INSERT INTO video_progress (user_id, video_id, position_ms) VALUES (?, ?, ?) ON CONFLICT (user_id, video_id) DO UPDATE SET position_ms = excluded.position_ms",
		},
		{
			name:     "PostgreSQL",
			dialect:  NewPostgresDialect(),
			expected: "INSERT INTO video_progress (user_id, video_id, position_ms) VALUES (?, ?, ?) ON CONFLICT (user_id, video_id) DO UPDATE SET position_ms = excluded.position_ms",
		},
		{
			name:     "MySQL",
			dialect:  NewMySQLDialect(),
			expected: "INSERT INTO video_progress (user_id, video_id, position_ms) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE position_ms = VALUES(position_ms)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.UpsertQuery("video_progress", columns, keys); got != tt.expected {
				t.Errorf("UpsertQuery() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGuardedUpsertQuery(t *testing.T) {
	columns := []string{"user_id", "video_id", "position_ms", "completed", "updated_at_ms"}
	keys := []string{"user_id", "video_id"}
	guard := UpsertGuard{Column: "updated_at_ms", Sticky: []string{"completed"}}

	onConflict := "INSERT INTO video_progress (user_id, video_id, position_ms, completed, updated_at_ms) VALUES (?, ?, ?, ?, ?)" +
		" ON CONFLICT (user_id, video_id) DO UPDATE SET position_ms = excluded.position_ms," +
		" completed = video_progress.completed OR excluded.completed, updated_at_ms = excluded.updated_at_ms" +
		" WHERE video_progress.updated_at_ms <= excluded.updated_at_ms"

	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{
			name:     "SQLite",
			dialect:  NewSQLiteDialect(),
			expected: onConflict,
		},
		{
			name:     "PostgreSQL",
			dialect:  NewPostgresDialect(),
			expected: onConflict,
		},
		{
			name:    "MySQL",
			dialect: NewMySQLDialect(),
			expected: "INSERT INTO video_progress (user_id, video_id, position_ms, completed, updated_at_ms) VALUES (?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE" +
				" position_ms = IF(VALUES(updated_at_ms) >= updated_at_ms, VALUES(position_ms), position_ms)," +
				" completed = IF(VALUES(updated_at_ms) >= updated_at_ms, completed OR VALUES(completed), completed)," +
				" updated_at_ms = IF(VALUES(updated_at_ms) >= updated_at_ms, VALUES(updated_at_ms), updated_at_ms)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.GuardedUpsertQuery("video_progress", columns, keys, guard); got != tt.expected {
				t.Errorf("GuardedUpsertQuery() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInsertIgnoreQuery(t *testing.T) {
	columns := []string{"user_id"}

	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{name: "SQLite", dialect: NewSQLiteDialect(), expected: "INSERT OR IGNORE INTO streaks (user_id) VALUES (?)"},
		{name: "PostgreSQL", dialect: NewPostgresDialect(), expected: "INSERT INTO streaks (user_id) VALUES (?) ON CONFLICT DO NOTHING"},
		{name: "MySQL", dialect: NewMySQLDialect(), expected: "INSERT IGNORE INTO streaks (user_id) VALUES (?)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.InsertIgnoreQuery("streaks", columns); got != tt.expected {
				t.Errorf("InsertIgnoreQuery() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		config   DialectConfig
		expected string
	}{
		{
			name:     "SQLite adds busy timeout",
			dialect:  NewSQLiteDialect(),
			config:   DialectConfig{Path: "app.db"},
			expected: "app.db?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1",
		},
		{
			name:     "SQLite keeps explicit options",
			dialect:  NewSQLiteDialect(),
			config:   DialectConfig{Path: "file:app.db?mode=ro"},
			expected: "file:app.db?mode=ro",
		},
		{
			name:     "MySQL adds parseTime",
			dialect:  NewMySQLDialect(),
			config:   DialectConfig{URL: "user:pw@tcp(db:3306)/app"},
			expected: "user:pw@tcp(db:3306)/app?parseTime=true",
		},
		{
			name:     "MySQL appends to existing params",
			dialect:  NewMySQLDialect(),
			config:   DialectConfig{URL: "user:pw@tcp(db:3306)/app?charset=utf8mb4"},
			expected: "user:pw@tcp(db:3306)/app?charset=utf8mb4&parseTime=true",
		},
		{
			name:     "PostgreSQL passthrough",
			dialect:  NewPostgresDialect(),
			config:   DialectConfig{URL: "postgres://localhost/app"},
			expected: "postgres://localhost/app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DSN(tt.config); got != tt.expected {
				t.Errorf("DSN() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `
-- header comment
CREATE TABLE a (id INTEGER);

CREATE INDEX idx_a ON a(id);
-- trailing comment
`
	got := splitStatements(content)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("first statement = %q", got[0])
	}
	if got[1] != "CREATE INDEX idx_a ON a(id)" {
		t.Errorf("second statement = %q", got[1])
	}
}
