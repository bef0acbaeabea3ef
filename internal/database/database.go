package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/franckalain/platecheck/internal/models"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// DB interface defines the methods our database should implement
type DB interface {
	SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	GetRecentAnalyses(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
	Close() error
}

// SQLiteDB implements the DB interface
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	// Initialize database schema
	if err := initializeSchema(db); err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func initializeSchema(db *sql.DB) error {
	// Read schema file
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}

	// Execute schema
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}

	log.Info("database schema initialized")
	return nil
}

// SaveAnalysis records one completed analysis. Only the verdict and upload
// metadata are stored; image bytes never reach the database.
func (s *SQLiteDB) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		INSERT INTO analyses (
			id, is_food, food_name, estimated_calories, health_score,
			mime_type, image_size, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.IsFood, record.FoodName, record.EstimatedCalories,
		record.HealthScore, record.MimeType, record.ImageSize,
		record.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// GetAnalysis retrieves one analysis record by ID
func (s *SQLiteDB) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	query := `
		SELECT id, is_food, food_name, estimated_calories, health_score,
			mime_type, image_size, created_at
		FROM analyses WHERE id = ?
	`

	record := &models.AnalysisRecord{}
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.IsFood, &record.FoodName, &record.EstimatedCalories,
		&record.HealthScore, &record.MimeType, &record.ImageSize, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return record, nil
}

// GetRecentAnalyses retrieves the most recent analysis records
func (s *SQLiteDB) GetRecentAnalyses(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	query := `
		SELECT id, is_food, food_name, estimated_calories, health_score,
			mime_type, image_size, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.AnalysisRecord
	for rows.Next() {
		var record models.AnalysisRecord
		var createdAt string

		err := rows.Scan(
			&record.ID, &record.IsFood, &record.FoodName, &record.EstimatedCalories,
			&record.HealthScore, &record.MimeType, &record.ImageSize, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		// Parse time strings
		record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		results = append(results, &record)
	}

	return results, rows.Err()
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
