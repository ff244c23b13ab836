package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationSource records how a card entered the registry.
type RegistrationSource string

const (
	RegistrationSourceManual RegistrationSource = "Manual"
	RegistrationSourceFile   RegistrationSource = "File"
)

// Card is a registered payment-card reference. The card number itself is
// never stored: CardNumberHash is the only key that identifies it.
type Card struct {
	ID                 uuid.UUID          `json:"id" gorm:"type:char(36);primaryKey"`
	CardNumberHash     string             `json:"-" gorm:"size:64;not null;uniqueIndex"`
	LastFourDigits     string             `json:"last_four_digits" gorm:"size:4"`
	LineIdentifier     *string            `json:"line_identifier,omitempty" gorm:"size:1"`
	LotSequence        *string            `json:"lot_sequence,omitempty" gorm:"size:32"`
	LotCode            *string            `json:"lot_code,omitempty" gorm:"size:8;index"`
	LotDate            *time.Time         `json:"lot_date,omitempty"`
	RegistrationSource RegistrationSource `json:"registration_source" gorm:"type:varchar(10);not null"`
	OwnerID            *uuid.UUID         `json:"owner_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt          time.Time          `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
