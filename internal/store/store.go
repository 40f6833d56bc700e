// Package store persists places in a local SQLite database and their photos
// in an ImageStore.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"places/internal/keys"
	"places/internal/models"
	"places/internal/storage"
)

// State is the lifecycle stage of a Store.
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

// Store is the durable place list. It has a single writer; the database's
// own statement atomicity is the only coordination needed.
type Store struct {
	path   string
	images storage.ImageStore
	log    *slog.Logger

	mu    sync.RWMutex
	state State
	db    *gorm.DB
}

// New returns an uninitialized store backed by the SQLite file at path
// (":memory:" works too). Call Init before anything else.
func New(path string, images storage.ImageStore, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{path: path, images: images, log: log}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Init opens the database and creates the schema if it is missing. Calling it
// on a ready store does nothing. A failure leaves the store uninitialized.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Ready {
		return nil
	}
	s.state = Initializing

	db, err := s.open(ctx)
	if err != nil {
		s.state = Uninitialized
		return &StorageError{Op: "init", Err: err}
	}
	s.db = db
	s.state = Ready
	s.log.Info("place_store_ready", "path", s.path)
	return nil
}

func (s *Store) open(ctx context.Context) (*gorm.DB, error) {
	if s.path != ":memory:" {
		if dir := filepath.Dir(s.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database dir: %w", err)
			}
		}
	}
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection: an in-memory database lives and dies with it.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to reach SQLite database: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&placeRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

func (s *Store) ready() (*gorm.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Ready {
		return nil, ErrNotReady
	}
	return s.db, nil
}

// Insert copies the photo of p into stable storage and writes the row. The
// returned place carries the stable image URI. When the row cannot be written
// the stored photo is deleted again, so a failed insert leaves nothing behind.
func (s *Store) Insert(ctx context.Context, p models.Place) (models.Place, error) {
	db, err := s.ready()
	if err != nil {
		return models.Place{}, err
	}
	if p.ID == "" {
		return models.Place{}, &StorageError{Op: "insert", Err: errors.New("place has no id")}
	}
	if err := p.Validate(); err != nil {
		return models.Place{}, &StorageError{Op: "insert", ID: p.ID, Err: err}
	}

	// A duplicate id would overwrite the photo of the existing place.
	var n int64
	if err := db.WithContext(ctx).Model(&placeRecord{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
		return models.Place{}, &StorageError{Op: "insert", ID: p.ID, Err: err}
	}
	if n > 0 {
		return models.Place{}, &StorageError{Op: "insert", ID: p.ID, Err: errors.New("id already exists")}
	}

	stableURI, err := s.images.Put(ctx, keys.Image(p.ID, p.ImageURI), p.ImageURI)
	if err != nil {
		return models.Place{}, &StorageError{Op: "insert", ID: p.ID, Err: err}
	}

	stored := p
	stored.ImageURI = stableURI
	rec := toRecord(stored)
	if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
		// The caller's ctx may be the reason for the failure; clean up anyway.
		if derr := s.images.Delete(context.WithoutCancel(ctx), stableURI); derr != nil {
			s.log.Error("image_cleanup_failed", "id", p.ID, "uri", stableURI, "error", derr)
		}
		return models.Place{}, &StorageError{Op: "insert", ID: p.ID, Err: err}
	}

	s.log.Info("place_inserted", "id", stored.ID, "title", stored.Title, "image", stableURI)
	return stored, nil
}

// ListAll returns every place in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]models.Place, error) {
	db, err := s.ready()
	if err != nil {
		return nil, err
	}
	var recs []placeRecord
	if err := db.WithContext(ctx).Order("seq ASC").Find(&recs).Error; err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	places := make([]models.Place, 0, len(recs))
	for _, r := range recs {
		places = append(places, r.toPlace())
	}
	return places, nil
}

// Get returns the place with the given id.
func (s *Store) Get(ctx context.Context, id string) (models.Place, error) {
	db, err := s.ready()
	if err != nil {
		return models.Place{}, err
	}
	var rec placeRecord
	err = db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Place{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return models.Place{}, &StorageError{Op: "get", ID: id, Err: err}
	}
	return rec.toPlace(), nil
}

// Close releases the database. The store returns to Uninitialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	s.state = Uninitialized
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
