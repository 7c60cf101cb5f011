package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/ChromaDNA/pkg/models"
	"github.com/himanishpuri/ChromaDNA/pkg/utils"
)

const DefaultDBFile = "chromadna.sqlite3"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Track struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Title       string `gorm:"uniqueIndex:idx_track_unique,priority:1" json:"title"`
	Artist      string `gorm:"uniqueIndex:idx_track_unique,priority:2" json:"artist"`
	DurationMs  int    `json:"duration_ms"`
	Algorithm   int    `json:"algorithm"`
	Fingerprint string `gorm:"type:text" json:"fingerprint"`
	Hash        uint32 `gorm:"index:idx_hash" json:"hash"`
	Items       int    `json:"items"`
	CreatedAt   time.Time
}

func (t *Track) toModel() models.Track {
	return models.Track{
		ID:          t.ID,
		Title:       t.Title,
		Artist:      t.Artist,
		DurationMs:  t.DurationMs,
		Algorithm:   t.Algorithm,
		Fingerprint: t.Fingerprint,
		Hash:        t.Hash,
		Items:       t.Items,
		CreatedAt:   t.CreatedAt,
	}
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := utils.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Track{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveTrack stores a track and returns its ID. A track with the same title
// and artist keeps its ID and gets the new fingerprint.
func (c *DBClient) SaveTrack(track *models.Track) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	fields := map[string]any{
		"duration_ms": track.DurationMs,
		"algorithm":   track.Algorithm,
		"fingerprint": track.Fingerprint,
		"hash":        track.Hash,
		"items":       track.Items,
	}

	var row Track
	err := c.DB.Where("title = ? AND artist = ?", track.Title, track.Artist).First(&row).Error
	if err == nil {
		if err := c.DB.Model(&row).Updates(fields).Error; err != nil {
			return "", fmt.Errorf("updating track: %w", err)
		}
		return row.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing track: %w", err)
	}

	row = Track{
		ID:          uuid.NewString(),
		Title:       track.Title,
		Artist:      track.Artist,
		DurationMs:  track.DurationMs,
		Algorithm:   track.Algorithm,
		Fingerprint: track.Fingerprint,
		Hash:        track.Hash,
		Items:       track.Items,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "constraint failed") {
			if fetchErr := c.DB.Where("title = ? AND artist = ?", track.Title, track.Artist).First(&row).Error; fetchErr != nil {
				return "", fmt.Errorf("fetching track after constraint violation: %w", fetchErr)
			}
			return row.ID, nil
		}
		return "", fmt.Errorf("creating track: %w", err)
	}
	return row.ID, nil
}

func (c *DBClient) GetTrackByID(id string) (*models.Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var row Track
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
		}
		return nil, fmt.Errorf("querying track: %w", err)
	}
	t := row.toModel()
	return &t, nil
}

func (c *DBClient) ListTracks() ([]models.Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Track
	if err := c.DB.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	tracks := make([]models.Track, len(rows))
	for i := range rows {
		tracks[i] = rows[i].toModel()
	}
	return tracks, nil
}

func (c *DBClient) DeleteTrack(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	res := c.DB.Where("id = ?", id).Delete(&Track{})
	if res.Error != nil {
		return fmt.Errorf("deleting track: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	return nil
}

// FindTracks returns the tracks whose hash is within maxDistance bits of
// hash. A distance of 0 uses the hash index, a negative one matches nothing.
func (c *DBClient) FindTracks(hash uint32, maxDistance int) ([]models.Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	if maxDistance < 0 {
		return nil, nil
	}
	if maxDistance > 0 {
		tracks, err := c.ListTracks()
		if err != nil {
			return nil, err
		}
		return withinDistance(tracks, hash, maxDistance), nil
	}

	var rows []Track
	if err := c.DB.Where("hash = ?", hash).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying tracks by hash: %w", err)
	}
	tracks := make([]models.Track, len(rows))
	for i := range rows {
		tracks[i] = rows[i].toModel()
	}
	return tracks, nil
}

func (c *DBClient) CountTracks() (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var count int64
	if err := c.DB.Model(&Track{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
