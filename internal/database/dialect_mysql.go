package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN enables parseTime so DATETIME columns scan into time.Time
func (d *MySQLDialect) DSN(config DialectConfig) string {
	if strings.Contains(config.URL, "parseTime=") {
		return config.URL
	}
	if strings.Contains(config.URL, "?") {
		return config.URL + "&parseTime=true"
	}
	return config.URL + "?parseTime=true"
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

func (d *MySQLDialect) UpsertQuery(table string, columns, keyColumns []string) string {
	var sets []string
	for _, c := range nonKeyColumns(columns, keyColumns) {
		sets = append(sets, c+" = VALUES("+c+")")
	}
	query := insertPrefix("INSERT INTO", table, columns)
	if len(sets) == 0 {
		return insertPrefix("INSERT IGNORE INTO", table, columns)
	}
	return query + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

// GuardedUpsertQuery guards every assignment with IF. MySQL applies the
// assignments left to right, so the guard column is assigned last.
func (d *MySQLDialect) GuardedUpsertQuery(table string, columns, keyColumns []string, guard UpsertGuard) string {
	newer := "VALUES(" + guard.Column + ") >= " + guard.Column
	var sets []string
	for _, c := range nonKeyColumns(columns, keyColumns) {
		if c == guard.Column {
			continue
		}
		value := "VALUES(" + c + ")"
		if guard.isSticky(c) {
			value = c + " OR " + value
		}
		sets = append(sets, c+" = IF("+newer+", "+value+", "+c+")")
	}
	sets = append(sets, guard.Column+" = IF("+newer+", VALUES("+guard.Column+"), "+guard.Column+")")
	return insertPrefix("INSERT INTO", table, columns) + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

func (d *MySQLDialect) InsertIgnoreQuery(table string, columns []string) string {
	return insertPrefix("INSERT IGNORE INTO", table, columns)
}
