package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cardregistry/internal/batch"
	"cardregistry/internal/cache"
	apperr "cardregistry/internal/errors"
	"cardregistry/internal/metrics"
	"cardregistry/internal/model"
	"cardregistry/internal/repository"
	"cardregistry/internal/security"
)

const (
	cardLookupCacheTTL  = 10 * time.Minute
	cardLookupKeyPrefix = "card:lookup:"
)

// CardLookup is the public view of a registered card.
type CardLookup struct {
	ID             uuid.UUID `json:"id"`
	LastFourDigits string    `json:"last_four_digits"`
}

// BatchResult summarises one batch file ingestion.
type BatchResult struct {
	Cards     []model.Card `json:"cards"`
	Created   int          `json:"created"`
	Skipped   int          `json:"skipped"`
	Malformed int          `json:"malformed"`
	LotCode   string       `json:"lot_code,omitempty"`
	LotDate   *time.Time   `json:"lot_date,omitempty"`
}

// Message describes how many cards the file registered.
func (r *BatchResult) Message() string {
	return fmt.Sprintf("%d cards registered from file", r.Created)
}

// CardService handles card registration and lookup.
type CardService interface {
	GetByCardNumber(ctx context.Context, cardNumber string) (*CardLookup, error)
	Create(ctx context.Context, cardNumber string, ownerID uuid.UUID) (*model.Card, error)
	CreateFromFile(ctx context.Context, file io.Reader, ownerID uuid.UUID) (*BatchResult, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Card, error)
}

type cardService struct {
	cardRepo  repository.CardRepository
	hasher    security.Hasher
	cache     *cache.Client
	metrics   metrics.MetricsCollector
	log       logrus.FieldLogger
	batchOpts batch.Options
	now       func() time.Time
}

// NewCardService creates a new card service.
func NewCardService(
	cardRepo repository.CardRepository,
	hasher security.Hasher,
	cache *cache.Client,
	collector metrics.MetricsCollector,
	log logrus.FieldLogger,
	batchOpts batch.Options,
) CardService {
	if collector == nil {
		collector = metrics.Noop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &cardService{
		cardRepo:  cardRepo,
		hasher:    hasher,
		cache:     cache,
		metrics:   collector,
		log:       log,
		batchOpts: batchOpts,
		now:       time.Now,
	}
}

// GetByCardNumber looks a card up by its clear number. Only the ID and the
// last four digits are returned.
func (s *cardService) GetByCardNumber(ctx context.Context, cardNumber string) (*CardLookup, error) {
	hash := s.hasher.Hash(strings.TrimSpace(cardNumber))
	key := cardLookupKeyPrefix + hash

	var cached CardLookup
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	card, err := s.cardRepo.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrCardNotFound
		}
		return nil, fmt.Errorf("find card: %w", err)
	}

	lookup := &CardLookup{ID: card.ID, LastFourDigits: card.LastFourDigits}
	// Cards are immutable once created; misses are never cached.
	s.cache.SetJSON(ctx, key, lookup, cardLookupCacheTTL)
	return lookup, nil
}

// Create registers one manually supplied card number.
func (s *cardService) Create(ctx context.Context, cardNumber string, ownerID uuid.UUID) (*model.Card, error) {
	number := strings.TrimSpace(cardNumber)
	if number == "" {
		return nil, apperr.ErrInvalidCardNumber
	}

	hash := s.hasher.Hash(number)
	exists, err := s.exists(ctx, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrCardAlreadyRegistered
	}

	card := s.newCard(hash, number, model.RegistrationSourceManual, ownerID)
	if err := s.cardRepo.Create(ctx, card); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrCardAlreadyRegistered
		}
		return nil, fmt.Errorf("create card: %w", err)
	}

	s.metrics.RecordCardRegistered(string(model.RegistrationSourceManual))
	return card, nil
}

// CreateFromFile registers every new card of a batch file, in file order.
// Each card is committed before the next line is checked, so a number that
// appears twice in one file is created once.
func (s *cardService) CreateFromFile(ctx context.Context, file io.Reader, ownerID uuid.UUID) (*BatchResult, error) {
	if file == nil {
		return nil, apperr.ErrInvalidFile
	}

	br := bufio.NewReader(file)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.ErrInvalidFile
		}
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	parsed, err := batch.Parse(br, s.batchOpts)
	if err != nil {
		if errors.Is(err, batch.ErrNoHeader) {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFile, err)
		}
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"lot_code": parsed.Header.LotCode,
		"records":  len(parsed.Records),
		"owner_id": ownerID,
	})

	result := &BatchResult{
		Cards:     make([]model.Card, 0, len(parsed.Records)),
		Malformed: parsed.Malformed,
		LotCode:   parsed.Header.LotCode,
		LotDate:   parsed.Header.LotDate,
	}

	for _, rec := range parsed.Records {
		hash := s.hasher.Hash(rec.CardNumber)

		exists, err := s.exists(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", rec.Line, err)
		}
		if exists {
			result.Skipped++
			log.WithField("line", rec.Line).Debug("card already registered, skipping")
			continue
		}

		card := s.newCard(hash, rec.CardNumber, model.RegistrationSourceFile, ownerID)
		card.LineIdentifier = optional(rec.LineIdentifier)
		card.LotSequence = optional(rec.LotSequence)
		card.LotCode = optional(parsed.Header.LotCode)
		card.LotDate = parsed.Header.LotDate

		if err := s.cardRepo.Create(ctx, card); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.Skipped++
				log.WithField("line", rec.Line).Debug("card registered concurrently, skipping")
				continue
			}
			return nil, fmt.Errorf("line %d: create card: %w", rec.Line, err)
		}

		result.Cards = append(result.Cards, *card)
		result.Created++
		s.metrics.RecordCardRegistered(string(model.RegistrationSourceFile))
	}

	s.metrics.RecordBatchLines(metrics.LineCreated, result.Created)
	s.metrics.RecordBatchLines(metrics.LineDuplicate, result.Skipped)
	s.metrics.RecordBatchLines(metrics.LineMalformed, result.Malformed)

	log = log.WithFields(logrus.Fields{
		"created":   result.Created,
		"skipped":   result.Skipped,
		"malformed": result.Malformed,
	})

	if result.Created == 0 {
		s.metrics.RecordBatchFile("empty")
		log.Info("batch file registered no card")
		return nil, apperr.ErrNoCardsRegistered
	}

	s.metrics.RecordBatchFile("success")
	log.Info("batch file ingested")
	return result, nil
}

// ListByOwner lists the cards registered by a user.
func (s *cardService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Card, error) {
	cards, err := s.cardRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func (s *cardService) exists(ctx context.Context, hash string) (bool, error) {
	_, err := s.cardRepo.FindByHash(ctx, hash)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check card existence: %w", err)
}

func (s *cardService) newCard(hash, number string, source model.RegistrationSource, ownerID uuid.UUID) *model.Card {
	card := &model.Card{
		ID:                 uuid.New(),
		CardNumberHash:     hash,
		LastFourDigits:     LastFourDigits(number),
		RegistrationSource: source,
		CreatedAt:          s.now(),
	}
	if ownerID != uuid.Nil {
		card.OwnerID = &ownerID
	}
	return card
}

// LastFourDigits returns the trailing four characters of a card number, or
// the whole number when it is shorter.
func LastFourDigits(number string) string {
	r := []rune(number)
	if len(r) <= 4 {
		return number
	}
	return string(r[len(r)-4:])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
