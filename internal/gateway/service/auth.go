package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/routing"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/cryptox"
	"github.com/aussiebroadwan/firegate/pkg/idx"
	"github.com/aussiebroadwan/firegate/pkg/jwtx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

const DefaultPasswordChangeTTL = 15 * time.Minute

// AuthService is the single session contract shared by every login kind.
// The kind only decides which principals may log in through it and which
// field identifies them.
type AuthService struct {
	Store store.Store

	// Sessions is the session registry. Nil uses Store.Sessions().
	Sessions store.Sessions

	Keys              *jwtx.KeyManager
	SessionTTL        time.Duration
	PasswordChangeTTL time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

// Grant is an issued session.
type Grant struct {
	Principal  domain.Principal
	SessionID  string
	Token      string
	ExpiresAt  time.Time
	RedirectTo string
}

// ChangePasswordInput is a password change request. A pending change is
// identified by ChangeToken; without it the caller must be signed in as the
// principal and OldPassword is mandatory.
type ChangePasswordInput struct {
	PrincipalID string
	OldPassword *string
	NewPassword string
	ChangeToken string

	// Caller is the current session, if any.
	Caller *jwtx.Claims
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) sessions() store.Sessions {
	if s.Sessions != nil {
		return s.Sessions
	}
	return s.Store.Sessions()
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

func (s *AuthService) changeTTL() time.Duration {
	if s.PasswordChangeTTL > 0 {
		return s.PasswordChangeTTL
	}
	return DefaultPasswordChangeTTL
}

// Login checks credentials for kind. A principal holding a provisional
// password gets a *PasswordChangeRequiredError instead of a session.
func (s *AuthService) Login(ctx context.Context, kind domain.Kind, login, password string) (Grant, error) {
	log := slogx.FromContext(ctx).With(slog.String("kind", kind.String()))

	p, err := s.Store.Principals().GetPrincipalByLogin(ctx, kind, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login: unknown principal")
			return Grant{}, ErrInvalidCredentials
		}
		return Grant{}, err
	}

	if err := cryptox.VerifyPassword(password, p.PasswordHash); err != nil {
		log.Warn("login: password mismatch", slog.String("principal_id", p.ID))
		return Grant{}, ErrInvalidCredentials
	}

	if !kind.Accepts(p.Role) {
		log.Warn("login: role not accepted by kind",
			slog.String("principal_id", p.ID),
			slog.String("role", p.Role.String()),
		)
		return Grant{}, ErrInvalidCredentials
	}

	if p.MustChangePassword {
		return Grant{}, s.beginPasswordChange(ctx, p)
	}

	return s.issue(ctx, p)
}

// beginPasswordChange records a pending change and returns the error that
// hands its token to the client. Older pending changes are dropped.
func (s *AuthService) beginPasswordChange(ctx context.Context, p domain.Principal) error {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return fmt.Errorf("generate change token: %w", err)
	}

	now := s.now()
	pc := domain.PasswordChange{
		TokenHash:   cryptox.FingerprintToken(token),
		PrincipalID: p.ID,
		Kind:        p.Kind,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.changeTTL()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordChanges().DeletePrincipalPasswordChanges(ctx, p.ID); err != nil {
			return err
		}
		return tx.PasswordChanges().CreatePasswordChange(ctx, pc)
	})
	if err != nil {
		return fmt.Errorf("record password change: %w", err)
	}

	slogx.FromContext(ctx).Info("login: password change required", slog.String("principal_id", p.ID))
	return &PasswordChangeRequiredError{PrincipalID: p.ID, ChangeToken: token}
}

// ChangePassword sets a new password and opens a session. Every other
// session of the principal is revoked.
func (s *AuthService) ChangePassword(ctx context.Context, kind domain.Kind, in ChangePasswordInput) (Grant, error) {
	var (
		p   domain.Principal
		err error
	)
	if in.ChangeToken != "" {
		p, err = s.checkPendingChange(ctx, kind, in)
	} else {
		p, err = s.checkVoluntaryChange(ctx, kind, in)
	}
	if err != nil {
		return Grant{}, err
	}

	if cryptox.VerifyPassword(in.NewPassword, p.PasswordHash) == nil {
		return Grant{}, ErrPasswordReused
	}

	hash, err := cryptox.HashPassword(in.NewPassword)
	if err != nil {
		return Grant{}, fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().UpdatePassword(ctx, p.ID, hash, false); err != nil {
			return err
		}
		return tx.PasswordChanges().DeletePrincipalPasswordChanges(ctx, p.ID)
	})
	if err != nil {
		return Grant{}, err
	}

	if err := s.sessions().RevokePrincipalSessions(ctx, p.ID); err != nil {
		return Grant{}, fmt.Errorf("revoke sessions: %w", err)
	}

	p.PasswordHash = hash
	p.MustChangePassword = false
	slogx.FromContext(ctx).Info("password changed", slog.String("principal_id", p.ID))
	return s.issue(ctx, p)
}

// discardPasswordChange drops an exhausted pending change. A failure only
// leaves the row for housekeeping, the caller is refused either way.
func (s *AuthService) discardPasswordChange(ctx context.Context, tokenHash, principalID string) {
	if err := s.Store.PasswordChanges().DeletePasswordChange(ctx, tokenHash); err != nil {
		slogx.FromContext(ctx).Warn("password change: failed to discard exhausted change",
			slog.String("principal_id", principalID),
			slog.Any("error", err),
		)
	}
}

func (s *AuthService) checkPendingChange(ctx context.Context, kind domain.Kind, in ChangePasswordInput) (domain.Principal, error) {
	log := slogx.FromContext(ctx)
	hash := cryptox.FingerprintToken(in.ChangeToken)

	pc, err := s.Store.PasswordChanges().GetPasswordChange(ctx, hash, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrInvalidChangeToken
		}
		return domain.Principal{}, err
	}
	if pc.PrincipalID != in.PrincipalID || pc.Kind != kind {
		log.Warn("password change: token does not belong to principal", slog.String("principal_id", in.PrincipalID))
		return domain.Principal{}, ErrInvalidChangeToken
	}
	if pc.Exhausted() {
		s.discardPasswordChange(ctx, hash, pc.PrincipalID)
		return domain.Principal{}, ErrTooManyAttempts
	}

	p, err := s.Store.Principals().GetPrincipalByID(ctx, pc.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrInvalidChangeToken
		}
		return domain.Principal{}, err
	}

	if in.OldPassword != nil && cryptox.VerifyPassword(*in.OldPassword, p.PasswordHash) != nil {
		updated, err := s.Store.PasswordChanges().IncrementPasswordChangeAttempts(ctx, hash)
		if err != nil {
			return domain.Principal{}, err
		}
		log.Warn("password change: old password mismatch",
			slog.String("principal_id", p.ID),
			slog.Int("attempts", updated.Attempts),
		)
		if updated.Exhausted() {
			s.discardPasswordChange(ctx, hash, p.ID)
			return domain.Principal{}, ErrTooManyAttempts
		}
		return domain.Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

func (s *AuthService) checkVoluntaryChange(ctx context.Context, kind domain.Kind, in ChangePasswordInput) (domain.Principal, error) {
	if in.Caller == nil || in.Caller.Subject != in.PrincipalID || in.Caller.Kind != kind.String() {
		return domain.Principal{}, ErrInvalidSession
	}
	if in.OldPassword == nil {
		return domain.Principal{}, ErrInvalidCredentials
	}

	p, err := s.Store.Principals().GetPrincipalByID(ctx, in.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrInvalidSession
		}
		return domain.Principal{}, err
	}
	if cryptox.VerifyPassword(*in.OldPassword, p.PasswordHash) != nil {
		slogx.FromContext(ctx).Warn("password change: old password mismatch", slog.String("principal_id", p.ID))
		return domain.Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

// Logout revokes sid. Revoking an unknown or already revoked session is not
// an error.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	err := s.sessions().RevokeSession(ctx, sid)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Principal loads the principal behind a verified session.
func (s *AuthService) Principal(ctx context.Context, c jwtx.Claims) (domain.Principal, error) {
	p, err := s.Store.Principals().GetPrincipalByID(ctx, c.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrInvalidSession
		}
		return domain.Principal{}, err
	}
	return p, nil
}

func (s *AuthService) issue(ctx context.Context, p domain.Principal) (Grant, error) {
	now := s.now()
	ttl := s.sessionTTL()
	sid := idx.New().String()

	sess := domain.Session{
		ID:          sid,
		PrincipalID: p.ID,
		Kind:        p.Kind,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.sessions().CreateSession(ctx, sess); err != nil {
		return Grant{}, fmt.Errorf("create session: %w", err)
	}

	token, _, err := s.Keys.IssueSession(SubjectFor(p), sid, ttl, now)
	if err != nil {
		return Grant{}, err
	}

	slogx.FromContext(ctx).Info("session issued",
		slog.String("principal_id", p.ID),
		slog.String("role", p.Role.String()),
		slog.String("sid", sid),
	)
	return Grant{
		Principal:  p,
		SessionID:  sid,
		Token:      token,
		ExpiresAt:  sess.ExpiresAt,
		RedirectTo: routing.LandingPath(p),
	}, nil
}

// SubjectFor copies the principal fields a session token carries.
func SubjectFor(p domain.Principal) jwtx.SessionSubject {
	return jwtx.SessionSubject{
		PrincipalID:   p.ID,
		Kind:          p.Kind.String(),
		Role:          p.Role.String(),
		Username:      p.Username,
		ServiceNumber: p.ServiceNumber,
		StationID:     p.StationID,
		DepartmentID:  p.DepartmentID,
		UnitID:        p.UnitID,
		SubRole:       p.SubRole,
	}
}

// PrincipalFromClaims rebuilds the principal a session token was issued to.
func PrincipalFromClaims(c jwtx.Claims) domain.Principal {
	return domain.Principal{
		ID:            c.Subject,
		Kind:          domain.Kind(c.Kind),
		Username:      c.Username,
		ServiceNumber: c.ServiceNumber,
		Role:          domain.Role(c.Role),
		StationID:     c.StationID,
		DepartmentID:  c.DepartmentID,
		UnitID:        c.UnitID,
		SubRole:       c.SubRole,
	}
}
