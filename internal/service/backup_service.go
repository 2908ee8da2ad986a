package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"soundsteps/internal/database"
	"soundsteps/internal/models"
	"soundsteps/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure. Sessions
// and reset tokens are transient and not included.
type BackupData struct {
	Version     string              `json:"version"`
	ExportedAt  time.Time           `json:"exported_at"`
	Users       []UserBackup        `json:"users"`
	Progress    []ProgressBackup    `json:"progress"`
	Stats       []StatsBackup       `json:"stats"`
	Assessments []models.Assessment `json:"assessments"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// ProgressBackup represents a playback checkpoint for backup
type ProgressBackup struct {
	UserID int64 `json:"user_id"`
	models.VideoProgress
}

// StatsBackup represents the watch aggregate and streak of a user
type StatsBackup struct {
	UserID  int64             `json:"user_id"`
	Stats   models.WatchStats `json:"stats"`
	Version int64             `json:"version"`
	Streak  models.StreakInfo `json:"streak"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db          *database.DB
	users       *repository.UserRepository
	progress    *repository.ProgressRepository
	stats       *repository.StatsRepository
	assessments *repository.AssessmentRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:          db,
		users:       repository.NewUserRepository(db),
		progress:    repository.NewProgressRepository(db),
		stats:       repository.NewStatsRepository(db),
		assessments: repository.NewAssessmentRepository(db),
	}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportTo(ctx, file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportTo writes a complete backup as indented JSON
func (s *BackupService) ExportTo(ctx context.Context, w io.Writer) error {
	log.Println("Starting database export...")

	backup, err := s.collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d progress records, %d stats, %d assessments",
		len(backup.Users), len(backup.Progress), len(backup.Stats), len(backup.Assessments))
	return nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
	}

	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{User: u, PasswordHash: u.PasswordHash})
	}

	progress, err := s.progress.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}
	for _, p := range progress {
		backup.Progress = append(backup.Progress, ProgressBackup{UserID: p.UserID, VideoProgress: p})
	}

	stats, err := s.stats.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export stats: %w", err)
	}
	for _, row := range stats {
		backup.Stats = append(backup.Stats, StatsBackup{
			UserID:  row.UserID,
			Stats:   row.Stats,
			Version: row.Stats.Version,
			Streak:  row.Streak,
		})
	}

	backup.Assessments, err = s.assessments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export assessments: %w", err)
	}

	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a database from a backup reader. Existing users
// and assessments are kept; newer progress is not overwritten.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importUsers(ctx, backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importProgress(ctx, backup.Progress); err != nil {
		return fmt.Errorf("failed to import progress: %w", err)
	}
	if err := s.importStats(ctx, backup.Stats); err != nil {
		return fmt.Errorf("failed to import stats: %w", err)
	}
	if err := s.importAssessments(ctx, backup.Assessments); err != nil {
		return fmt.Errorf("failed to import assessments: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

// ClearAll deletes every row of every application table
func (s *BackupService) ClearAll(ctx context.Context) error {
	// Delete in reverse order of dependencies
	tables := []string{
		"assessments",
		"watch_stats",
		"streaks",
		"video_progress",
		"password_reset_tokens",
		"sessions",
		"users",
	}

	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		log.Printf("Cleared table: %s", table)
	}
	return nil
}

func (s *BackupService) importUsers(ctx context.Context, users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))

	query := s.db.GetDialect().InsertIgnoreQuery("users", []string{
		"id", "email", "password_hash", "name", "phone", "child_name", "child_age",
		"implant_date", "therapist_id", "profile_image_url", "created_at", "updated_at",
	})
	for _, u := range users {
		_, err := s.db.ExecContext(ctx, query,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.ChildName, u.ChildAge,
			nullIfEmpty(u.ImplantDate), nullIfEmpty(u.TherapistID), nullIfEmpty(u.ProfileImageURL),
			u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}

	// Explicit ids leave the postgres sequence behind
	if s.db.GetDialect().DriverName() == "postgres" && len(users) > 0 {
		if _, err := s.db.ExecContext(ctx,
			"SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))",
		); err != nil {
			return fmt.Errorf("failed to reset user id sequence: %w", err)
		}
	}
	return nil
}

func (s *BackupService) importProgress(ctx context.Context, records []ProgressBackup) error {
	log.Printf("Importing %d progress records...", len(records))
	skipped := 0
	for _, r := range records {
		p := r.VideoProgress
		p.UserID = r.UserID
		applied, err := s.progress.SaveProgress(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to import progress %d/%s: %w", r.UserID, p.VideoID, err)
		}
		if !applied {
			skipped++
		}
	}
	if skipped > 0 {
		log.Printf("Kept %d newer progress records already in the database", skipped)
	}
	return nil
}

func (s *BackupService) importStats(ctx context.Context, rows []StatsBackup) error {
	log.Printf("Importing %d stats...", len(rows))
	for _, r := range rows {
		stats := r.Stats
		stats.Version = r.Version
		if err := s.stats.ImportStats(ctx, repository.StatsRow{UserID: r.UserID, Stats: stats, Streak: r.Streak}); err != nil {
			return fmt.Errorf("failed to import stats for user %d: %w", r.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importAssessments(ctx context.Context, assessments []models.Assessment) error {
	log.Printf("Importing %d assessments...", len(assessments))

	query := s.db.GetDialect().InsertIgnoreQuery("assessments", []string{
		"id", "user_id", "period", "cap_score", "sir_score", "notes", "recorded_at",
	})
	for _, a := range assessments {
		if _, err := s.db.ExecContext(ctx, query,
			a.ID, a.UserID, a.Period, a.CAPScore, a.SIRScore, a.Notes, a.RecordedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to import assessment %s: %w", a.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
