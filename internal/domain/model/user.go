package model

import (
	"telegram-quest-bot/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a Telegram user in our system.
// Created on first contact; only FirstName and Username are ever refreshed.
type User struct {
	ID         string
	TelegramID int64
	FirstName  string
	Username   string
}

func NewUser(id string, tgID int64, firstName, username string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if firstName == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:         id,
		TelegramID: tgID,
		FirstName:  firstName,
		Username:   username,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// RankedUser pairs a user with their activation count for leaderboards.
type RankedUser struct {
	User
	Activations int
}
