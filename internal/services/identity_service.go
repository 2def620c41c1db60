package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/models"
	"github.com/ghostnote-im/ghostnote-backend/internal/repository"
)

// Identity ID keyspace: 6-digit integers.
const (
	minIdentityID = 100000
	maxIdentityID = 999999
)

// IdentityService issues, recovers and tracks anonymous identities.
type IdentityService struct {
	identityRepo repository.IdentityRepository
	onlineWindow time.Duration
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(identityRepo repository.IdentityRepository) *IdentityService {
	return &IdentityService{
		identityRepo: identityRepo,
		onlineWindow: models.OnlineWindow,
	}
}

// randomIdentityID generates a random 6-digit candidate ID.
func randomIdentityID() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxIdentityID-minIdentityID+1))
	if err != nil {
		return 0, fmt.Errorf("failed to generate identity ID: %w", err)
	}
	return minIdentityID + int(n.Int64()), nil
}

// Issue creates a fresh identity with a random unused 6-digit ID. The
// insert's primary key arbitrates concurrent candidates; a collision just
// draws again. The keyspace is 900 000 wide, so retries are not bounded.
func (s *IdentityService) Issue(ctx context.Context, originAddress string) (*models.Identity, error) {
	for {
		id, err := randomIdentityID()
		if err != nil {
			return nil, err
		}

		identity := newIdentity(id, originAddress)
		if err := s.identityRepo.Create(ctx, identity); err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				continue
			}
			return nil, err
		}
		return identity, nil
	}
}

// Recover re-materializes an identity under a previously issued ID. If a
// record for the ID already exists the recovery fails with AlreadyClaimed
// and the caller must fall back to Issue; it never overwrites.
func (s *IdentityService) Recover(ctx context.Context, id int, originAddress string) (*models.Identity, error) {
	if id < minIdentityID || id > maxIdentityID {
		return nil, apperrors.ErrInvalidInput
	}

	identity := newIdentity(id, originAddress)
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, apperrors.ErrAlreadyClaimed
		}
		return nil, err
	}
	return identity, nil
}

// Get retrieves an identity by ID.
func (s *IdentityService) Get(ctx context.Context, id int) (*models.Identity, error) {
	identity, err := s.identityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, err
	}
	return identity, nil
}

// Touch updates the identity's last-seen timestamp to now.
func (s *IdentityService) Touch(ctx context.Context, id int) error {
	err := s.identityRepo.UpdateLastSeen(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrIdentityNotFound
	}
	return err
}

// ListAll returns every identity with its derived online flag. An
// identity is online if it was seen within the online window.
func (s *IdentityService) ListAll(ctx context.Context) ([]models.IdentityPresence, error) {
	identities, err := s.identityRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	presences := make([]models.IdentityPresence, 0, len(identities))
	for _, identity := range identities {
		presences = append(presences, models.IdentityPresence{
			Identity: identity,
			Online:   now.Sub(identity.LastSeen) < s.onlineWindow,
		})
	}
	return presences, nil
}

func newIdentity(id int, originAddress string) *models.Identity {
	now := time.Now()
	return &models.Identity{
		ID:            id,
		DisplayName:   models.DisplayNameFor(id),
		OriginAddress: originAddress,
		CreatedAt:     now,
		LastSeen:      now,
	}
}
