package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/firegate/pkg/cryptox"
	"github.com/aussiebroadwan/firegate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://firegate.example.test"

func newSigner(t *testing.T, kid string) jwtx.Signer {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func sessionClaims(issuer string, ttl time.Duration) jwtx.Claims {
	return jwtx.NewSessionClaims(jwtx.SessionSubject{
		PrincipalID: "principal-1",
		Kind:        "station-admin",
		Role:        "Admin",
		Username:    "admin1",
		StationID:   "ST-9",
	}, "session-1", ttl, issuer, []string{"dashboard"}, time.Now().UTC())
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newSigner(t, "key-1")
	require.NoError(t, signer.Validate())
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "key-1", signer.KID())

	claims := sessionClaims(exampleIssuer, 5*time.Minute)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	verifier := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{Issuer: exampleIssuer, Audience: []string{"dashboard"}})
	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, got.Subject)
	require.Equal(t, claims.SID, got.SID)
	require.Equal(t, "Admin", got.Role)
	require.Equal(t, "station-admin", got.Kind)
	require.Equal(t, "ST-9", got.StationID)
	require.Equal(t, claims.ID, got.ID)
}

func TestEdDSAVerifyFailures(t *testing.T) {
	signer := newSigner(t, "key-1")
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{Issuer: exampleIssuer})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(sessionClaims("someone-else", time.Minute))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign(sessionClaims(exampleIssuer, -time.Minute))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("unknown kid", func(t *testing.T) {
		other := newSigner(t, "key-2")
		token, err := other.Sign(sessionClaims(exampleIssuer, time.Minute))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("forged with same kid", func(t *testing.T) {
		forger := newSigner(t, "key-1")
		token, err := forger.Sign(sessionClaims(exampleIssuer, time.Minute))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not-a-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestNewSignerEdDSA_RejectsBadPEM(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("k", []byte("nope"))
	require.Error(t, err)
}
