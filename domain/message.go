// Package domain contains core concepts of the song messaging system.
// This file defines the Message entity and its creation rules.
// Messages are immutable once persisted.
package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"songnote/errors"
)

var validate = validator.New()

// Draft is the caller-supplied content of a message before persistence.
// Track fields are denormalized copies of the chosen track at send time
// and never change afterwards, even if the upstream track metadata does.
type Draft struct {
	Recipient   string `validate:"required"`
	Description string `validate:"required"`
	TrackID     string `validate:"required"`
	TrackName   string
	ArtistName  string
}

func (d Draft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	if strings.TrimSpace(d.Recipient) == "" || strings.TrimSpace(d.Description) == "" {
		return errors.ErrInvalidMessage
	}
	return nil
}

// Message represents an immutable persisted song message.
// The ID and CreatedAt are assigned by the store on append.
type Message struct {
	ID          uuid.UUID
	Recipient   string
	Description string
	TrackID     string
	TrackName   string
	ArtistName  string
	CreatedAt   time.Time
}
