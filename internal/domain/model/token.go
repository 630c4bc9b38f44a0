package model

import (
	"telegram-quest-bot/internal/domain"

	"github.com/google/uuid"
)

// Token is a physical collectible unit identified by a QR code. The QR payload
// on the printed sticker is the token's ID.
type Token struct {
	ID    string
	Name  string
	Valid bool
}

func NewToken(id string, name string) (*Token, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Token{ID: id, Name: name, Valid: true}, nil
}

func (t *Token) IsZero() bool { return t == nil || t.ID == "" }
