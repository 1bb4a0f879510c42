package gateway_test

import (
	"testing"

	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies the probes answer before bootstrap.
func TestHealthEndpoints(t *testing.T) {
	baseURL := setupGatewayContainer(t)
	client := gatewaysdk.NewClient(baseURL)

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks["database"])
	require.Equal(t, "ok", ready.Checks["signer"])
}
