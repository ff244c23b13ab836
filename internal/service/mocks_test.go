package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"cardregistry/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) bool {
	args := m.Called(ctx, tokenID)
	return args.Bool(0)
}

// fakeCardRepository keeps cards in memory so dedup sees earlier creates.
type fakeCardRepository struct {
	cards     []model.Card
	findErr   error
	createErr error
	creates   int
}

func (r *fakeCardRepository) Create(ctx context.Context, card *model.Card) error {
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	r.cards = append(r.cards, *card)
	return nil
}

func (r *fakeCardRepository) FindByHash(ctx context.Context, hash string) (*model.Card, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for i := range r.cards {
		if r.cards[i].CardNumberHash == hash {
			c := r.cards[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCardRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Card, error) {
	var out []model.Card
	for _, c := range r.cards {
		if c.OwnerID != nil && *c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepository) seed(hash, lastFour string) model.Card {
	c := model.Card{
		ID:                 uuid.New(),
		CardNumberHash:     hash,
		LastFourDigits:     lastFour,
		RegistrationSource: model.RegistrationSourceManual,
		CreatedAt:          time.Now(),
	}
	r.cards = append(r.cards, c)
	return c
}

// fakeHasher makes hashes readable in assertions.
type fakeHasher struct{}

func (fakeHasher) Hash(value string) string { return "HASH:" + value }
