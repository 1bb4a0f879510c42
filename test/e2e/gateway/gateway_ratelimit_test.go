package gateway_test

import (
	"testing"

	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin verifies the login endpoint allows 5 attempts a minute
// per username.
func TestRateLimitLogin(t *testing.T) {
	baseURL := setupGatewayContainerWithDefaultRateLimits(t)
	client := gatewaysdk.NewClient(baseURL)

	req := gatewaysdk.LoginRequest{Username: "nobody", Password: "wrong-password"}
	for i := range 5 {
		_, err := client.Login(t.Context(), gatewaysdk.KindGeneral, req)
		assertAPIError(t, err, gatewaysdk.ErrorCodeInvalidCredentials)
		t.Logf("attempt %d rejected without rate limiting", i+1)
	}

	_, err := client.Login(t.Context(), gatewaysdk.KindGeneral, req)
	assertAPIError(t, err, gatewaysdk.ErrorCodeRateLimited)

	var ae *gatewaysdk.AuthError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, 429, ae.StatusCode)
}

// TestRateLimitBootstrap verifies wrong bootstrap tokens cannot be brute forced.
func TestRateLimitBootstrap(t *testing.T) {
	baseURL := setupGatewayContainerWithDefaultRateLimits(t)
	client := gatewaysdk.NewClient(baseURL)

	req := gatewaysdk.BootstrapRequest{
		Username:      rootUsername,
		PreferredName: rootPreferredName,
		Password:      rootPassword,
	}

	var lastErr error
	for range 6 {
		_, lastErr = client.Bootstrap(t.Context(), "wrong-token", req)
		require.Error(t, lastErr)
	}
	assertAPIError(t, lastErr, gatewaysdk.ErrorCodeRateLimited)
}
