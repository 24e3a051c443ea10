// Package auth issues and verifies player identity.
//
// A token is HMAC-SHA256(secret, playerId), hex encoded. Tokens are
// stateless: nothing is stored, and rotating the secret invalidates every
// outstanding token at once.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/logger"
	"github.com/hexfray/hexfray/store"
)

// ErrInvalidUsername is returned when the trimmed username is shorter than 2
// or longer than 24 characters.
var ErrInvalidUsername = errors.New("auth: username must be 2-24 characters")

const (
	usernameMinLen = 2
	usernameMaxLen = 24
)

// Service registers players and verifies tokens.
type Service struct {
	store  *store.Store
	secret []byte
}

// New creates the identity service. The secret is process-wide config.
func New(st *store.Store, secret string) *Service {
	return &Service{store: st, secret: []byte(secret)}
}

// RegisterResult is what a successful registration returns to the client.
type RegisterResult struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// Register creates a player for the username, or returns the existing record
// with a freshly computed token when the name is already taken
// (case-insensitively). New players draw a random color from the palette.
func (s *Service) Register(ctx context.Context, username string) (RegisterResult, error) {
	username = strings.TrimSpace(username)
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return RegisterResult{}, ErrInvalidUsername
	}

	existing, found, err := s.store.FindPlayerByUsername(ctx, username)
	if err != nil {
		return RegisterResult{}, err
	}
	if found {
		logger.L().Debug("registration matched existing player",
			zap.String("player_id", existing.ID))
		return RegisterResult{
			PlayerID: existing.ID,
			Token:    s.Token(existing.ID),
			Username: existing.Username,
			Color:    existing.Color,
		}, nil
	}

	color := config.Palette[rand.Intn(len(config.Palette))]
	p, err := s.store.CreatePlayer(ctx, username, color)
	if err != nil {
		return RegisterResult{}, err
	}
	logger.L().Info("registered player",
		zap.String("player_id", p.ID), zap.String("username", p.Username))
	return RegisterResult{
		PlayerID: p.ID,
		Token:    s.Token(p.ID),
		Username: p.Username,
		Color:    p.Color,
	}, nil
}

// Token computes the HMAC token for a player id.
func (s *Service) Token(playerID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(playerID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a presented token in constant time.
func (s *Service) Verify(playerID, token string) bool {
	if playerID == "" || token == "" {
		return false
	}
	expected, err := hex.DecodeString(s.Token(playerID))
	if err != nil {
		return false
	}
	presented, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, presented)
}
