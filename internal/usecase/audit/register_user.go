package audit

import (
	"context"
	"errors"
	"strings"

	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
)

// EnsureUser registers a chat user on first contact and returns the stored
// record. An existing user is returned as-is; display names are not synced
// after registration.
func (s *Service) EnsureUser(ctx context.Context, chatID int64, name string) (ports.User, error) {
	if ctx == nil {
		return ports.User{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return ports.User{}, err
	}
	if chatID == 0 {
		return ports.User{}, errors.New("chat id is required")
	}

	user, err := s.repo.GetUserByChatID(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return ports.User{}, errs.Wrap(err, "look up user")
	}

	created, err := s.repo.CreateUser(ctx, chatID, strings.TrimSpace(name))
	if err != nil {
		return ports.User{}, errs.Wrap(err, "register user")
	}
	return created, nil
}
