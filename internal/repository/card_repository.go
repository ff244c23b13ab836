package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardregistry/internal/model"
)

// CardRepository defines card persistence operations. The unique index on
// card_number_hash is the authoritative duplicate guard; Create returns
// gorm.ErrDuplicatedKey when it trips.
type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	FindByHash(ctx context.Context, hash string) (*model.Card, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Card, error)
}

type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

// Create inserts a card and commits it immediately.
func (r *cardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// FindByHash finds a card by its card number hash.
func (r *cardRepository) FindByHash(ctx context.Context, hash string) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Where("card_number_hash = ?", hash).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// ListByOwner lists the cards registered by one user, oldest first.
func (r *cardRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}
