// Package metadata records generation requests and stored images in a SQL
// database through gorm.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// DefaultLabel is stored when the request carried no size or style.
const DefaultLabel = "default"

// PromptRecord is one generation request as the user sent it.
type PromptRecord struct {
	PromptID     string    `json:"promptId" gorm:"primaryKey;size:36"`
	PromptText   string    `json:"promptText" gorm:"type:text"`
	StyledPrompt string    `json:"styledPrompt" gorm:"type:text"`
	Size         string    `json:"size" gorm:"size:32;default:'default'"`
	Style        string    `json:"style" gorm:"size:32;default:'default'"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}

// ImageRecord points at one stored image.
type ImageRecord struct {
	ImageID   string    `json:"imageId" gorm:"primaryKey;size:36"`
	PromptID  string    `json:"promptId" gorm:"index;size:36"`
	ObjectKey string    `json:"s3Key" gorm:"size:255"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// Store wraps a migrated gorm database.
type Store struct {
	db *gorm.DB
}

// Open connects with the named driver and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "imagestudio.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return New(db)
}

// New migrates the schema on an existing connection.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&PromptRecord{}, &ImageRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate metadata schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordPrompt inserts p. Empty size and style are stored as DefaultLabel.
func (s *Store) RecordPrompt(ctx context.Context, p *PromptRecord) error {
	if p.Size == "" {
		p.Size = DefaultLabel
	}
	if p.Style == "" {
		p.Style = DefaultLabel
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to record prompt: %w", err)
	}
	return nil
}

func (s *Store) RecordImage(ctx context.Context, img *ImageRecord) error {
	if err := s.db.WithContext(ctx).Create(img).Error; err != nil {
		return fmt.Errorf("failed to record image: %w", err)
	}
	return nil
}

// GetPrompt returns gorm.ErrRecordNotFound, wrapped, for unknown ids.
func (s *Store) GetPrompt(ctx context.Context, promptID string) (*PromptRecord, error) {
	var p PromptRecord
	if err := s.db.WithContext(ctx).First(&p, "prompt_id = ?", promptID).Error; err != nil {
		return nil, fmt.Errorf("get prompt %s: %w", promptID, err)
	}
	return &p, nil
}

// ImagesForPrompt lists the images generated for promptID, oldest first.
func (s *Store) ImagesForPrompt(ctx context.Context, promptID string) ([]*ImageRecord, error) {
	var images []*ImageRecord
	err := s.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("created_at asc").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("list images for prompt %s: %w", promptID, err)
	}
	return images, nil
}

// RecentPrompts returns up to limit prompts, newest first.
func (s *Store) RecentPrompts(ctx context.Context, limit int) ([]*PromptRecord, error) {
	var prompts []*PromptRecord
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&prompts).Error
	if err != nil {
		return nil, fmt.Errorf("list recent prompts: %w", err)
	}
	return prompts, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
