package model

import (
	"time"

	"telegram-quest-bot/internal/domain"

	"github.com/google/uuid"
)

// Activation is the durable fact that a user redeemed a token exactly once.
// Time is assigned by the database at insert, not by the application.
type Activation struct {
	ID      string
	UserID  string
	TokenID string
	Time    time.Time
}

func NewActivation(id, userID, tokenID string) (*Activation, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if userID == "" || tokenID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Activation{ID: id, UserID: userID, TokenID: tokenID}, nil
}
