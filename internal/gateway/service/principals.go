package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/cryptox"
	"github.com/aussiebroadwan/firegate/pkg/idx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

// PrincipalService provisions principals. New principals always start with
// a provisional password so their first login goes through the password
// change flow.
type PrincipalService struct {
	Store store.Store
}

type ProvisionInput struct {
	Kind          domain.Kind
	Role          domain.Role
	Username      string
	ServiceNumber string
	PreferredName string
	StationID     string
	DepartmentID  string
	UnitID        string
	SubRole       string
}

// Provision creates a principal on behalf of caller and returns it with its
// temporary password. SuperAdmins may create anyone; station admins only
// personnel and civilians of their own station.
func (s *PrincipalService) Provision(
	ctx context.Context,
	caller domain.Principal,
	in ProvisionInput,
) (domain.Principal, string, error) {
	if !in.Kind.Accepts(in.Role) {
		return domain.Principal{}, "", fmt.Errorf("%w: %s cannot log in as %s", ErrRoleKindMismatch, in.Role, in.Kind)
	}
	if err := authorizeProvision(caller, &in); err != nil {
		return domain.Principal{}, "", err
	}

	temp, err := cryptox.GenerateTemporaryPassword()
	if err != nil {
		return domain.Principal{}, "", err
	}
	hash, err := cryptox.HashPassword(temp)
	if err != nil {
		return domain.Principal{}, "", err
	}

	p := domain.Principal{
		ID:                 idx.New().String(),
		Kind:               in.Kind,
		Role:               in.Role,
		PreferredName:      strings.TrimSpace(in.PreferredName),
		StationID:          in.StationID,
		DepartmentID:       in.DepartmentID,
		UnitID:             in.UnitID,
		SubRole:            in.SubRole,
		PasswordHash:       hash,
		MustChangePassword: true,
	}
	if in.Kind.UsesServiceNumber() {
		p.ServiceNumber = strings.TrimSpace(in.ServiceNumber)
	} else {
		p.Username = strings.TrimSpace(in.Username)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := resolvePlacement(ctx, tx, &p); err != nil {
			return err
		}
		return tx.Principals().CreatePrincipal(ctx, p)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, "", ErrPrincipalExists
		}
		return domain.Principal{}, "", err
	}

	slogx.FromContext(ctx).Info("principal provisioned",
		slog.String("principal_id", p.ID),
		slog.String("kind", p.Kind.String()),
		slog.String("role", p.Role.String()),
		slog.String("by", caller.ID),
	)
	return p, temp, nil
}

func authorizeProvision(caller domain.Principal, in *ProvisionInput) error {
	switch {
	case caller.Role.Is(domain.RoleSuperAdmin):
		return nil
	case caller.Role.Is(domain.RoleAdmin):
		if in.Kind != domain.KindPersonnel && in.Kind != domain.KindGeneral {
			return ErrForbidden
		}
		if in.StationID == "" {
			in.StationID = caller.StationID
		}
		if caller.StationID == "" || in.StationID != caller.StationID {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}

// resolvePlacement checks the referenced station and unit exist and fills
// the department and station from them when missing.
func resolvePlacement(ctx context.Context, tx store.Tx, p *domain.Principal) error {
	if p.UnitID != "" {
		u, err := tx.Units().GetUnit(ctx, p.UnitID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownUnit
			}
			return err
		}
		if p.StationID == "" {
			p.StationID = u.StationID
		}
		if u.StationID != "" && u.StationID != p.StationID {
			return fmt.Errorf("%w: unit %s belongs to another station", ErrUnknownUnit, u.ID)
		}
	}
	if p.StationID != "" {
		st, err := tx.Organisation().GetStation(ctx, p.StationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownStation
			}
			return err
		}
		if p.DepartmentID == "" {
			p.DepartmentID = st.DepartmentID
		}
	}
	return nil
}

// List returns principals visible to caller. Station admins only see their
// own station.
func (s *PrincipalService) List(ctx context.Context, caller domain.Principal, f store.PrincipalFilter) ([]domain.Principal, error) {
	switch {
	case caller.Role.Is(domain.RoleSuperAdmin):
	case caller.Role.Is(domain.RoleAdmin):
		if caller.StationID == "" {
			return nil, ErrForbidden
		}
		f.StationID = caller.StationID
	default:
		return nil, ErrForbidden
	}
	return s.Store.Principals().ListPrincipals(ctx, f)
}
