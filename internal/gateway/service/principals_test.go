package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/stretchr/testify/require"
)

func TestProvisionForcesPasswordChange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addStation(t, "S1", "D1")
	env.addUnit(t, "U1", "S1")

	svc := &PrincipalService{Store: env.store}
	root := domain.Principal{ID: "root", Role: domain.RoleSuperAdmin}

	p, temp, err := svc.Provision(ctx, root, ProvisionInput{
		Kind:          domain.KindPersonnel,
		Role:          domain.RoleFirePersonnel,
		ServiceNumber: " FS-42 ",
		Username:      "ignored",
		PreferredName: "Alex",
		UnitID:        "U1",
	})
	require.NoError(t, err)
	require.Len(t, temp, 12)
	require.True(t, p.MustChangePassword)
	require.Equal(t, "FS-42", p.ServiceNumber)
	require.Empty(t, p.Username)
	require.Equal(t, "S1", p.StationID, "station taken from the unit")
	require.Equal(t, "D1", p.DepartmentID, "department taken from the station")

	_, err = env.auth.Login(ctx, domain.KindPersonnel, "FS-42", temp)
	require.ErrorIs(t, err, ErrPasswordChangeRequired)

	_, _, err = svc.Provision(ctx, root, ProvisionInput{
		Kind:          domain.KindPersonnel,
		Role:          domain.RoleOperations,
		ServiceNumber: "fs-42",
		PreferredName: "Dup",
	})
	require.ErrorIs(t, err, ErrPrincipalExists)
}

func TestProvisionPolicy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addStation(t, "S1", "")
	env.addStation(t, "S2", "")

	svc := &PrincipalService{Store: env.store}
	stationAdmin := domain.Principal{ID: "sa", Role: domain.RoleStationAdmin, StationID: "S1"}
	ops := domain.Principal{ID: "ops", Role: domain.RoleOperations, StationID: "S1"}

	tests := []struct {
		name   string
		caller domain.Principal
		in     ProvisionInput
		want   error
	}{
		{
			name:   "role must match kind",
			caller: domain.Principal{Role: domain.RoleSuperAdmin},
			in:     ProvisionInput{Kind: domain.KindGeneral, Role: domain.RoleAdmin, Username: "x"},
			want:   ErrRoleKindMismatch,
		},
		{
			name:   "station admin cannot create admins",
			caller: stationAdmin,
			in:     ProvisionInput{Kind: domain.KindStationAdmin, Role: domain.RoleAdmin, Username: "other"},
			want:   ErrForbidden,
		},
		{
			name:   "station admin limited to own station",
			caller: stationAdmin,
			in:     ProvisionInput{Kind: domain.KindPersonnel, Role: domain.RoleFirePersonnel, ServiceNumber: "FS-1", StationID: "S2"},
			want:   ErrForbidden,
		},
		{
			name:   "operations cannot provision",
			caller: ops,
			in:     ProvisionInput{Kind: domain.KindGeneral, Role: domain.RoleCivilian, Username: "x"},
			want:   ErrForbidden,
		},
		{
			name:   "unknown station",
			caller: domain.Principal{Role: domain.RoleSuperAdmin},
			in:     ProvisionInput{Kind: domain.KindPersonnel, Role: domain.RoleFirePersonnel, ServiceNumber: "FS-2", StationID: "S9"},
			want:   ErrUnknownStation,
		},
		{
			name:   "unknown unit",
			caller: domain.Principal{Role: domain.RoleSuperAdmin},
			in:     ProvisionInput{Kind: domain.KindPersonnel, Role: domain.RoleFirePersonnel, ServiceNumber: "FS-3", UnitID: "U9"},
			want:   ErrUnknownUnit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Provision(ctx, tt.caller, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("station admin defaults to own station", func(t *testing.T) {
		p, _, err := svc.Provision(ctx, stationAdmin, ProvisionInput{
			Kind: domain.KindPersonnel, Role: domain.RoleFirePersonnel, ServiceNumber: "FS-10",
		})
		require.NoError(t, err)
		require.Equal(t, "S1", p.StationID)
	})
}

func TestListPrincipalsScoped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addStation(t, "S1", "")
	env.addStation(t, "S2", "")

	env.addPrincipal(t, domain.Principal{Kind: domain.KindPersonnel, ServiceNumber: "A", Role: domain.RoleFirePersonnel, StationID: "S1"}, "pw-123456")
	env.addPrincipal(t, domain.Principal{Kind: domain.KindPersonnel, ServiceNumber: "B", Role: domain.RoleFirePersonnel, StationID: "S2"}, "pw-123456")

	svc := &PrincipalService{Store: env.store}

	all, err := svc.List(ctx, domain.Principal{Role: domain.RoleSuperAdmin}, store.PrincipalFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := svc.List(ctx, domain.Principal{Role: domain.RoleAdmin, StationID: "S1"}, store.PrincipalFilter{StationID: "S2"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "A", mine[0].ServiceNumber)

	_, err = svc.List(ctx, domain.Principal{Role: domain.RoleCivilian}, store.PrincipalFilter{})
	require.ErrorIs(t, err, ErrForbidden)
}
