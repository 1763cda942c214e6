package mapping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-sync/core/reconcile"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ reconcile.Store = (*Store)(nil)

// Store is the gorm backed mapping store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the store tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Mapping{}, &ContentHash{}, &RunState{}, &OAuthToken{}); err != nil {
		return fmt.Errorf("failed to migrate mapping store: %w", err)
	}
	return nil
}

// Mappings returns source key to remote id for a kind.
func (s *Store) Mappings(ctx context.Context, kind reconcile.Kind) (map[string]string, error) {
	var rows []Mapping
	if err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.SourceKey] = row.RemoteID
	}
	return out, nil
}

// Entries returns the mapping rows of a kind ordered by source key.
func (s *Store) Entries(ctx context.Context, kind reconcile.Kind) ([]Mapping, error) {
	var rows []Mapping
	if err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("source_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	return rows, nil
}

// Hashes returns source key to content hash for a kind.
func (s *Store) Hashes(ctx context.Context, kind reconcile.Kind) (map[string]string, error) {
	var rows []ContentHash
	if err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query hashes: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.SourceKey] = row.Hash
	}
	return out, nil
}

// SetMapping inserts a mapping. An existing mapping for the key is kept.
func (s *Store) SetMapping(ctx context.Context, kind reconcile.Kind, key, remoteID string) error {
	row := Mapping{Kind: string(kind), SourceKey: key, RemoteID: remoteID, CreatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to insert mapping: %w", err)
	}
	return nil
}

// SetHash inserts or replaces the content hash of a key.
func (s *Store) SetHash(ctx context.Context, kind reconcile.Kind, key, hash string) error {
	row := ContentHash{Kind: string(kind), SourceKey: key, Hash: hash, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "source_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"hash", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert hash: %w", err)
	}
	return nil
}

// DeleteMapping removes the mapping of a key.
func (s *Store) DeleteMapping(ctx context.Context, kind reconcile.Kind, key string) error {
	err := s.db.WithContext(ctx).
		Where("kind = ? AND source_key = ?", string(kind), key).
		Delete(&Mapping{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	return nil
}

// DeleteHash removes the content hash of a key.
func (s *Store) DeleteHash(ctx context.Context, kind reconcile.Kind, key string) error {
	err := s.db.WithContext(ctx).
		Where("kind = ? AND source_key = ?", string(kind), key).
		Delete(&ContentHash{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete hash: %w", err)
	}
	return nil
}

// LastRun returns the start time of the last finished run, or nil if no run
// has finished yet.
func (s *Store) LastRun(ctx context.Context) (*time.Time, error) {
	var row RunState
	err := s.db.WithContext(ctx).Where("name = ?", DefaultRun).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run state: %w", err)
	}
	t := row.LastRun.UTC()
	return &t, nil
}

// SetLastRun replaces the last run timestamp.
func (s *Store) SetLastRun(ctx context.Context, t time.Time) error {
	row := RunState{Name: DefaultRun, LastRun: t.UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_run"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to persist run state: %w", err)
	}
	return nil
}

// LoadToken returns the persisted token stored under name, or nil.
func (s *Store) LoadToken(ctx context.Context, name string) (*oauth2.Token, error) {
	var row OAuthToken
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}
	return &oauth2.Token{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenType:    row.TokenType,
		Expiry:       row.Expiry,
	}, nil
}

// SaveToken stores tok under name.
func (s *Store) SaveToken(ctx context.Context, name string, tok *oauth2.Token) error {
	row := OAuthToken{
		Name:         name,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry.UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expiry", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
