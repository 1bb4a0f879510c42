package jwtx

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aussiebroadwan/firegate/pkg/cryptox"
)

// AlgorithmEdDSA is the only signing algorithm used for session tokens.
const AlgorithmEdDSA = "EdDSA"

// KeyManager owns the session signing keys of a firegate instance and the
// matching KeySet used for verification and JWKS publishing.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	issuer   string
	audience []string

	signers []Signer
	mu      sync.RWMutex
}

// KeyManagerOptions configures the KeyManager.
type KeyManagerOptions struct {
	// Issuer is the issuer claim (iss) stamped on and required of tokens.
	Issuer string

	// Audience is the list of audience values (aud). Empty means none.
	Audience []string

	// Leeway tolerated on exp/nbf during verification.
	Leeway time.Duration

	// NumKeys is how many signing keys to generate. Defaults to 3, capped at 10.
	NumKeys int
}

// NewEphemeralKeyManager creates a KeyManager with in-memory Ed25519 keys.
// Keys are never persisted, so every session token is invalidated when the
// service restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 3
	}
	if numKeys > 10 {
		numKeys = 10
	}

	keyset := NewKeySet()
	signers := make([]Signer, 0, numKeys)

	for i := range numKeys {
		signer, err := generateSigner()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, VerifyOptions{
			Issuer:   opts.Issuer,
			Audience: opts.Audience,
			Leeway:   opts.Leeway,
		}),
		KeySet:   keyset,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		signers:  signers,
	}, nil
}

func generateSigner() (Signer, error) {
	kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}

	pemBytes, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, fmt.Errorf("failed to generate EdDSA key: %w", err)
	}
	return NewSignerEdDSA("firegate-"+kid, pemBytes)
}

// Issuer returns the issuer stamped on tokens.
func (km *KeyManager) Issuer() string { return km.issuer }

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// signer picks one of the active signing keys at random.
func (km *KeyManager) signer() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// IssueSession signs a session token for the subject and returns it with
// its claims.
func (km *KeyManager) IssueSession(sub SessionSubject, sid string, ttl time.Duration, now time.Time) (string, Claims, error) {
	signer := km.signer()
	if signer == nil {
		return "", Claims{}, fmt.Errorf("jwtx: no signing key available")
	}

	claims := NewSessionClaims(sub, sid, ttl, km.issuer, km.audience, now)
	token, err := signer.Sign(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign session: %w", err)
	}
	return token, claims, nil
}

// Rotate generates a fresh signing key and retires the oldest active one.
// Retired keys stay in the KeySet so outstanding sessions keep verifying.
func (km *KeyManager) Rotate() (string, error) {
	signer, err := generateSigner()
	if err != nil {
		return "", err
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return "", fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	if len(km.signers) > 1 {
		km.signers = km.signers[1:]
	}
	return signer.KID(), nil
}
