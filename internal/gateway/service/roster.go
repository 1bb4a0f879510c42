package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/cryptox"
	"github.com/aussiebroadwan/firegate/pkg/idx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

// Roster is an import file describing an organisation. Every cross reference
// may be a bare id or the embedded object; embedded objects are upserted
// before they are referenced.
type Roster struct {
	Departments []domain.Department `json:"departments"`
	Stations    []RosterStation     `json:"stations"`
	Units       []RosterUnit        `json:"units"`
	Principals  []RosterPrincipal   `json:"principals"`
}

type RosterStation struct {
	ID         string                        `json:"id"`
	Name       string                        `json:"name"`
	Department domain.Ref[domain.Department] `json:"department"`
}

type RosterUnit struct {
	ID         string                        `json:"id"`
	Callsign   string                        `json:"callsign"`
	Station    domain.Ref[domain.Station]    `json:"station"`
	Department domain.Ref[domain.Department] `json:"department"`

	// Active stays unknown when the field is absent.
	Active domain.ActiveState `json:"active"`
}

type RosterPrincipal struct {
	Kind          string                        `json:"kind"`
	Role          string                        `json:"role"`
	Username      string                        `json:"username"`
	ServiceNumber string                        `json:"service_number"`
	PreferredName string                        `json:"preferred_name"`
	SubRole       string                        `json:"sub_role"`
	Station       domain.Ref[domain.Station]    `json:"station"`
	Department    domain.Ref[domain.Department] `json:"department"`
	Unit          domain.Ref[RosterUnitRef]     `json:"unit"`
}

// RosterUnitRef is the embedded shape of a unit reference.
type RosterUnitRef struct {
	ID       string             `json:"id"`
	Callsign string             `json:"callsign"`
	Active   domain.ActiveState `json:"active"`
}

// RefID implements domain.Identifiable.
func (u RosterUnitRef) RefID() string { return u.ID }

// RosterResult summarises an import. TemporaryPasswords maps each created
// principal's login name to its provisional password.
type RosterResult struct {
	Departments        int
	Stations           int
	Units              int
	Principals         int
	Skipped            int
	TemporaryPasswords map[string]string
}

// DecodeRoster reads a roster, rejecting unknown fields.
func DecodeRoster(r io.Reader) (Roster, error) {
	var roster Roster
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&roster); err != nil {
		return Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	return roster, nil
}

// RosterService imports rosters.
type RosterService struct {
	Store store.Store
}

// Import applies the roster in one transaction. Principals whose login
// already exists are skipped, everything else is upserted.
func (s *RosterService) Import(ctx context.Context, roster Roster) (RosterResult, error) {
	res := RosterResult{TemporaryPasswords: make(map[string]string)}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		imp := rosterImport{ctx: ctx, tx: tx, res: &res}

		for _, d := range roster.Departments {
			if err := imp.department(d); err != nil {
				return err
			}
		}
		for i, st := range roster.Stations {
			if err := imp.station(st); err != nil {
				return fmt.Errorf("stations[%d]: %w", i, err)
			}
		}
		for i, u := range roster.Units {
			if err := imp.unit(u); err != nil {
				return fmt.Errorf("units[%d]: %w", i, err)
			}
		}
		for i, p := range roster.Principals {
			if err := imp.principal(p); err != nil {
				return fmt.Errorf("principals[%d]: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return RosterResult{}, err
	}

	slogx.FromContext(ctx).Info("roster imported",
		slog.Int("departments", res.Departments),
		slog.Int("stations", res.Stations),
		slog.Int("units", res.Units),
		slog.Int("principals", res.Principals),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

type rosterImport struct {
	ctx context.Context
	tx  store.Tx
	res *RosterResult
}

func (imp rosterImport) department(d domain.Department) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("department: %w", domain.ErrEmptyRef)
	}
	imp.res.Departments++
	return imp.tx.Organisation().UpsertDepartment(imp.ctx, d)
}

// departmentRef normalises a department reference, upserting an embedded
// department first. An absent reference yields "".
func (imp rosterImport) departmentRef(ref domain.Ref[domain.Department]) (string, error) {
	if ref.IsZero() {
		return "", nil
	}
	if d, ok := ref.Embedded(); ok {
		if err := imp.department(d); err != nil {
			return "", err
		}
	}
	return ref.ID()
}

func (imp rosterImport) station(in RosterStation) error {
	deptID, err := imp.departmentRef(in.Department)
	if err != nil {
		return err
	}
	return imp.upsertStation(domain.Station{ID: in.ID, Name: in.Name, DepartmentID: deptID})
}

func (imp rosterImport) upsertStation(st domain.Station) error {
	if strings.TrimSpace(st.ID) == "" {
		return fmt.Errorf("station: %w", domain.ErrEmptyRef)
	}
	imp.res.Stations++
	return imp.tx.Organisation().UpsertStation(imp.ctx, st)
}

func (imp rosterImport) stationRef(ref domain.Ref[domain.Station]) (string, error) {
	if ref.IsZero() {
		return "", nil
	}
	if st, ok := ref.Embedded(); ok {
		if err := imp.upsertStation(st); err != nil {
			return "", err
		}
	}
	return ref.ID()
}

func (imp rosterImport) unit(in RosterUnit) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("unit: %w", domain.ErrEmptyRef)
	}
	stationID, err := imp.stationRef(in.Station)
	if err != nil {
		return err
	}
	deptID, err := imp.departmentRef(in.Department)
	if err != nil {
		return err
	}
	if deptID == "" && stationID != "" {
		if st, err := imp.tx.Organisation().GetStation(imp.ctx, stationID); err == nil {
			deptID = st.DepartmentID
		}
	}

	imp.res.Units++
	return imp.tx.Units().UpsertUnit(imp.ctx, domain.Unit{
		ID:           in.ID,
		Callsign:     in.Callsign,
		StationID:    stationID,
		DepartmentID: deptID,
		Active:       in.Active,
	})
}

func (imp rosterImport) principal(in RosterPrincipal) error {
	kind, err := domain.ParseKind(in.Kind)
	if err != nil {
		return err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return err
	}
	if !kind.Accepts(role) {
		return fmt.Errorf("%w: %s cannot log in as %s", ErrRoleKindMismatch, role, kind)
	}

	stationID, err := imp.stationRef(in.Station)
	if err != nil {
		return err
	}
	deptID, err := imp.departmentRef(in.Department)
	if err != nil {
		return err
	}

	var unitID string
	if !in.Unit.IsZero() {
		if u, ok := in.Unit.Embedded(); ok {
			if err := imp.unit(RosterUnit{
				ID:       u.ID,
				Callsign: u.Callsign,
				Station:  domain.RefByID[domain.Station](stationID),
				Active:   u.Active,
			}); err != nil {
				return err
			}
		}
		if unitID, err = in.Unit.ID(); err != nil {
			return err
		}
	}

	p := domain.Principal{
		ID:                 idx.New().String(),
		Kind:               kind,
		Role:               role,
		PreferredName:      strings.TrimSpace(in.PreferredName),
		StationID:          stationID,
		DepartmentID:       deptID,
		UnitID:             unitID,
		SubRole:            in.SubRole,
		MustChangePassword: true,
	}
	if kind.UsesServiceNumber() {
		p.ServiceNumber = strings.TrimSpace(in.ServiceNumber)
	} else {
		p.Username = strings.TrimSpace(in.Username)
	}
	if p.LoginName() == "" {
		return fmt.Errorf("principal has no login name for kind %s", kind)
	}

	if err := resolvePlacement(imp.ctx, imp.tx, &p); err != nil {
		return err
	}

	temp, err := cryptox.GenerateTemporaryPassword()
	if err != nil {
		return err
	}
	if p.PasswordHash, err = cryptox.HashPassword(temp); err != nil {
		return err
	}

	err = imp.tx.Principals().CreatePrincipal(imp.ctx, p)
	if errors.Is(err, store.ErrAlreadyExists) {
		imp.res.Skipped++
		return nil
	}
	if err != nil {
		return err
	}

	imp.res.Principals++
	imp.res.TemporaryPasswords[kind.String()+"/"+p.LoginName()] = temp
	return nil
}
