package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newPersonnel(serviceNumber string) domain.Principal {
	return domain.Principal{
		ID:            idx.New().String(),
		Kind:          domain.KindPersonnel,
		ServiceNumber: serviceNumber,
		PreferredName: "Firefighter " + serviceNumber,
		Role:          domain.RoleFirePersonnel,
		PasswordHash:  "hash",
	}
}

func TestPrincipals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := newPersonnel("FS-1001")
	p.MustChangePassword = true
	require.NoError(t, s.Principals().CreatePrincipal(ctx, p))

	t.Run("lookup by login is case insensitive and trimmed", func(t *testing.T) {
		got, err := s.Principals().GetPrincipalByLogin(ctx, domain.KindPersonnel, "  fs-1001 ")
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)
		require.Equal(t, "FS-1001", got.ServiceNumber)
		require.Empty(t, got.Username)
		require.True(t, got.MustChangePassword)
	})

	t.Run("login is scoped by kind", func(t *testing.T) {
		_, err := s.Principals().GetPrincipalByLogin(ctx, domain.KindGeneral, "FS-1001")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate login within kind", func(t *testing.T) {
		dup := newPersonnel("fs-1001")
		require.ErrorIs(t, s.Principals().CreatePrincipal(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("update password clears provisional flag", func(t *testing.T) {
		require.NoError(t, s.Principals().UpdatePassword(ctx, p.ID, "new-hash", false))
		got, err := s.Principals().GetPrincipalByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)
		require.False(t, got.MustChangePassword)

		require.ErrorIs(t, s.Principals().UpdatePassword(ctx, "missing", "x", false), store.ErrNotFound)
	})

	t.Run("list and count", func(t *testing.T) {
		admin := domain.Principal{
			ID:           idx.New().String(),
			Kind:         domain.KindSuperAdmin,
			Username:     "root",
			Role:         domain.RoleSuperAdmin,
			PasswordHash: "hash",
		}
		require.NoError(t, s.Principals().CreatePrincipal(ctx, admin))

		n, err := s.Principals().CountByRole(ctx, domain.RoleSuperAdmin)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		all, err := s.Principals().ListPrincipals(ctx, store.PrincipalFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)

		personnel, err := s.Principals().ListPrincipals(ctx, store.PrincipalFilter{Kind: domain.KindPersonnel})
		require.NoError(t, err)
		require.Len(t, personnel, 1)
		require.Equal(t, p.ID, personnel[0].ID)
	})
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := newPersonnel("FS-2002")
	require.NoError(t, s.Principals().CreatePrincipal(ctx, p))

	now := time.Now()
	live := domain.Session{ID: idx.New().String(), PrincipalID: p.ID, Kind: p.Kind, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := domain.Session{ID: idx.New().String(), PrincipalID: p.ID, Kind: p.Kind, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, s.Sessions().CreateSession(ctx, live))
	require.NoError(t, s.Sessions().CreateSession(ctx, stale))

	ok, err := s.Sessions().SessionActive(ctx, live.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Sessions().SessionActive(ctx, stale.ID)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Sessions().SessionActive(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Sessions().RevokeSession(ctx, live.ID))
	ok, err = s.Sessions().SessionActive(ctx, live.ID)
	require.NoError(t, err)
	require.False(t, ok)
	require.ErrorIs(t, s.Sessions().RevokeSession(ctx, "unknown"), store.ErrNotFound)

	n, err := s.Sessions().DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestRevokePrincipalSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := newPersonnel("FS-3003")
	require.NoError(t, s.Principals().CreatePrincipal(ctx, p))

	now := time.Now()
	var ids []string
	for range 3 {
		sess := domain.Session{ID: idx.New().String(), PrincipalID: p.ID, Kind: p.Kind, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))
		ids = append(ids, sess.ID)
	}

	require.NoError(t, s.Sessions().RevokePrincipalSessions(ctx, p.ID))
	for _, id := range ids {
		ok, err := s.Sessions().SessionActive(ctx, id)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestPasswordChanges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := newPersonnel("FS-4004")
	require.NoError(t, s.Principals().CreatePrincipal(ctx, p))

	now := time.Now()
	pc := domain.PasswordChange{
		TokenHash:   "fingerprint",
		PrincipalID: p.ID,
		Kind:        p.Kind,
		CreatedAt:   now,
		ExpiresAt:   now.Add(15 * time.Minute),
	}
	require.NoError(t, s.PasswordChanges().CreatePasswordChange(ctx, pc))

	got, err := s.PasswordChanges().GetPasswordChange(ctx, "fingerprint", now)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.PrincipalID)
	require.Zero(t, got.Attempts)

	_, err = s.PasswordChanges().GetPasswordChange(ctx, "fingerprint", now.Add(time.Hour))
	require.ErrorIs(t, err, store.ErrNotFound)

	for i := 1; i <= domain.MaxPasswordChangeAttempts; i++ {
		got, err = s.PasswordChanges().IncrementPasswordChangeAttempts(ctx, "fingerprint")
		require.NoError(t, err)
		require.Equal(t, i, got.Attempts)
	}
	require.True(t, got.Exhausted())

	_, err = s.PasswordChanges().IncrementPasswordChangeAttempts(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.PasswordChanges().DeletePrincipalPasswordChanges(ctx, p.ID))
	_, err = s.PasswordChanges().GetPasswordChange(ctx, "fingerprint", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	expired := pc
	expired.TokenHash = "old"
	expired.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, s.PasswordChanges().CreatePasswordChange(ctx, expired))
	n, err := s.PasswordChanges().DeleteExpiredPasswordChanges(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestOrganisation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Organisation().UpsertDepartment(ctx, domain.Department{ID: "D1", Name: "Metro"}))
	require.NoError(t, s.Organisation().UpsertStation(ctx, domain.Station{ID: "S1", Name: "Central", DepartmentID: "D1"}))

	// A bare reference must not blank out known details.
	require.NoError(t, s.Organisation().UpsertStation(ctx, domain.Station{ID: "S1"}))

	st, err := s.Organisation().GetStation(ctx, "S1")
	require.NoError(t, err)
	require.Equal(t, domain.Station{ID: "S1", Name: "Central", DepartmentID: "D1"}, st)

	_, err = s.Organisation().GetStation(ctx, "S9")
	require.ErrorIs(t, err, store.ErrNotFound)

	depts, err := s.Organisation().ListDepartments(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Department{{ID: "D1", Name: "Metro"}}, depts)

	stations, err := s.Organisation().ListStations(ctx, "D1")
	require.NoError(t, err)
	require.Len(t, stations, 1)

	stations, err = s.Organisation().ListStations(ctx, "D2")
	require.NoError(t, err)
	require.Empty(t, stations)
}

func TestUnitsActiveFlag(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Organisation().UpsertStation(ctx, domain.Station{ID: "S1", Name: "Central"}))

	tests := []struct {
		name   string
		upsert domain.ActiveState
		want   domain.ActiveState
	}{
		{"absent flag stays unknown", domain.ActiveUnknown, domain.ActiveUnknown},
		{"explicit false is stored", domain.ActiveNo, domain.ActiveNo},
		{"absent flag keeps known value", domain.ActiveUnknown, domain.ActiveNo},
		{"explicit true overrides", domain.ActiveYes, domain.ActiveYes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Units().UpsertUnit(ctx, domain.Unit{
				ID:        "U1",
				Callsign:  "Pumper 1",
				StationID: "S1",
				Active:    tt.upsert,
			}))
			u, err := s.Units().GetUnit(ctx, "U1")
			require.NoError(t, err)
			require.Equal(t, tt.want, u.Active)
			require.Equal(t, "Pumper 1", u.Callsign)
		})
	}

	require.NoError(t, s.Units().SetUnitActive(ctx, "U1", false))
	u, err := s.Units().GetUnit(ctx, "U1")
	require.NoError(t, err)
	require.Equal(t, domain.ActiveNo, u.Active)

	require.ErrorIs(t, s.Units().SetUnitActive(ctx, "U9", true), store.ErrNotFound)

	units, err := s.Units().ListUnits(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestWithTxRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := newPersonnel("FS-5005")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().CreatePrincipal(ctx, p); err != nil {
			return err
		}
		return store.ErrAlreadyExists
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Principals().GetPrincipalByID(ctx, p.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Principals().CreatePrincipal(ctx, p)
	}))
	_, err = s.Principals().GetPrincipalByID(ctx, p.ID)
	require.NoError(t, err)
}
