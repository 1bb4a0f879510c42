package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

// UnitService lists units and flips their activation flag.
type UnitService struct {
	Store store.Store
}

// List returns the units caller may see. Station admins are limited to their
// own station whatever stationID asks for.
func (s *UnitService) List(ctx context.Context, caller domain.Principal, stationID string) ([]domain.Unit, error) {
	if !caller.Role.Is(domain.RoleSuperAdmin) {
		if caller.StationID == "" {
			return nil, ErrForbidden
		}
		stationID = caller.StationID
	}
	return s.Store.Units().ListUnits(ctx, stationID)
}

// SetActive sets the unit's flag explicitly, turning an unknown flag into a
// known one.
func (s *UnitService) SetActive(ctx context.Context, caller domain.Principal, id string, active bool) (domain.Unit, error) {
	var out domain.Unit
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Units().GetUnit(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownUnit
			}
			return err
		}
		if !caller.Role.Is(domain.RoleSuperAdmin) && (caller.StationID == "" || u.StationID != caller.StationID) {
			return ErrForbidden
		}
		if err := tx.Units().SetUnitActive(ctx, id, active); err != nil {
			return err
		}
		out, err = tx.Units().GetUnit(ctx, id)
		return err
	})
	if err != nil {
		return domain.Unit{}, err
	}

	slogx.FromContext(ctx).Info("unit activation changed",
		slog.String("unit_id", id),
		slog.Bool("active", active),
		slog.String("by", caller.ID),
	)
	return out, nil
}
