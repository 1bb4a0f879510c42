package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a dashboard session token.
const DefaultSessionTTL = 8 * time.Hour

// Claims are the session-token claims issued after a successful login or
// password change. Role and placement fields mirror the principal at the
// time of issue so page gating does not need a store round trip.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, checked against the session registry for revocation.
	SID string `json:"sid"`

	// Kind is the actor kind (auth domain) the session was opened under.
	Kind string `json:"kind"`

	// Role of the principal, one of the closed role enumeration.
	Role string `json:"role"`

	Username      string `json:"username,omitempty"`
	ServiceNumber string `json:"service_number,omitempty"`
	StationID     string `json:"station_id,omitempty"`
	DepartmentID  string `json:"department_id,omitempty"`
	UnitID        string `json:"unit_id,omitempty"`
	SubRole       string `json:"sub_role,omitempty"`
}

// SessionSubject holds the principal fields copied into a session token.
type SessionSubject struct {
	PrincipalID   string
	Kind          string
	Role          string
	Username      string
	ServiceNumber string
	StationID     string
	DepartmentID  string
	UnitID        string
	SubRole       string
}

// NewSessionClaims builds minimally-correct claims for a session.
func NewSessionClaims(
	sub SessionSubject,
	sid string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub.PrincipalID,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:           sid,
		Kind:          sub.Kind,
		Role:          sub.Role,
		Username:      sub.Username,
		ServiceNumber: sub.ServiceNumber,
		StationID:     sub.StationID,
		DepartmentID:  sub.DepartmentID,
		UnitID:        sub.UnitID,
		SubRole:       sub.SubRole,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateSession checks the firegate-specific claims are present.
func (c *Claims) ValidateSession() error {
	if c.Subject == "" || c.SID == "" || c.Role == "" || c.Kind == "" {
		return ErrInvalidClaim
	}
	return nil
}
