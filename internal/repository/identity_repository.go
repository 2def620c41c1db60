package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghostnote-im/ghostnote-backend/internal/models"
	"gorm.io/gorm"
)

// IdentityRepository defines the interface for identity data access
type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id int) (*models.Identity, error)
	List(ctx context.Context) ([]models.Identity, error)
	UpdateLastSeen(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

// identityRepository implements IdentityRepository using GORM
type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository creates a new IdentityRepository instance
func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

// Create persists a new identity record. The 6-digit ID is supplied by
// the caller; a concurrent insert for the same ID loses with
// ErrDuplicateEntry, which makes Create the atomic create-if-absent
// primitive that both issuance and recovery race through.
func (r *identityRepository) Create(ctx context.Context, identity *models.Identity) error {
	result := r.db.WithContext(ctx).Create(identity)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("identity %d already exists: %w", identity.ID, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create identity: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an identity by its ID
func (r *identityRepository) GetByID(ctx context.Context, id int) (*models.Identity, error) {
	var identity models.Identity
	result := r.db.WithContext(ctx).First(&identity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get identity by ID: %w", result.Error)
	}
	return &identity, nil
}

// List retrieves all identity records ordered by creation time
func (r *identityRepository) List(ctx context.Context) ([]models.Identity, error) {
	var identities []models.Identity
	result := r.db.WithContext(ctx).Order("created_at ASC").Find(&identities)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list identities: %w", result.Error)
	}
	return identities, nil
}

// UpdateLastSeen updates the last_seen timestamp for an identity
func (r *identityRepository) UpdateLastSeen(ctx context.Context, id int) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Identity{}).Where("id = ?", id).Update("last_seen", now)
	if result.Error != nil {
		return fmt.Errorf("failed to update last seen: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes an identity by its ID. The external expiry policy is the
// only caller; the mailbox log is left behind as an orphan on purpose.
func (r *identityRepository) Delete(ctx context.Context, id int) error {
	result := r.db.WithContext(ctx).Delete(&models.Identity{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
