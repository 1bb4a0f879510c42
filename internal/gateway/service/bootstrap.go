package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/cryptox"
	"github.com/aussiebroadwan/firegate/pkg/idx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapDisabled     = errors.New("bootstrap disabled")
)

// BootstrapService creates the first SuperAdmin. It only works while no
// SuperAdmin exists and the caller knows the configured token.
type BootstrapService struct {
	Store store.Store
	Token string
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	n, err := s.Store.Principals().CountByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Bootstrap creates the SuperAdmin. The password is chosen by the caller so
// no password change is forced.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token, username, preferredName, password string,
) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" {
		return domain.Principal{}, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.Principal{}, ErrBootstrapUnauthorized
	}

	done, err := s.IsBootstrapped(ctx)
	if err != nil {
		return domain.Principal{}, err
	}
	if done {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.Principal{}, ErrBootstrapAlready
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{
		ID:            idx.New().String(),
		Kind:          domain.KindSuperAdmin,
		Username:      strings.TrimSpace(username),
		PreferredName: strings.TrimSpace(preferredName),
		Role:          domain.RoleSuperAdmin,
		PasswordHash:  hash,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-check inside the transaction so two racing requests cannot
		// both succeed.
		n, err := tx.Principals().CountByRole(ctx, domain.RoleSuperAdmin)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBootstrapAlready
		}
		return tx.Principals().CreatePrincipal(ctx, p)
	})
	if err != nil {
		return domain.Principal{}, err
	}

	l.Info("successfully bootstrapped system", slog.String("principal_id", p.ID))
	return p, nil
}
