package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// UserService records residents on first contact.
type UserService struct {
	engine
	pepper []byte
}

// NewUserService builds the resident registry. pepper keys the display
// name hash.
func NewUserService(gw Gateway, pepper []byte, log zerolog.Logger, opts ...Option) *UserService {
	return &UserService{engine: newEngine(gw, log.With().Str("component", "users").Logger(), opts), pepper: pepper}
}

// Register creates the resident if needed and stores the hash of the
// current display name.
func (s *UserService) Register(ctx context.Context, id uint64, displayName string) (model.User, error) {
	if id == 0 {
		return model.User{}, fmt.Errorf("missing user id: %w", model.ErrValidation)
	}
	if strings.TrimSpace(displayName) == "" {
		return model.User{}, fmt.Errorf("empty display name: %w", model.ErrValidation)
	}
	hash, err := utils.HashDisplayName(s.pepper, displayName)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	err = s.run(ctx, func(tx Tx) error {
		if err := tx.UpsertUserName(ctx, id, hash); err != nil {
			return err
		}
		u, err = tx.GetUser(ctx, id)
		return err
	})
	return u, err
}

// Get returns a resident or model.ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := s.run(ctx, func(tx Tx) error {
		var err error
		u, err = tx.GetUser(ctx, id)
		return err
	})
	return u, err
}

// IsAdmin reports whether id is flagged as an admin. Unknown residents
// are not admins.
func (s *UserService) IsAdmin(ctx context.Context, id uint64) (bool, error) {
	u, err := s.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

// Promote flags the given residents as admins, creating them when needed.
func (s *UserService) Promote(ctx context.Context, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.run(ctx, func(tx Tx) error {
		for _, id := range ids {
			if err := tx.SetAdmin(ctx, id, true); err != nil {
				return err
			}
		}
		return nil
	})
}
