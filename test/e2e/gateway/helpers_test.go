package gateway_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for firegate end-to-end tests.
 * This includes container setup, bootstrap and login helpers.
 */

const (
	testImageName = "firegate-test:latest"

	bootstrapToken     = "test-bootstrap-token-12345"
	rootUsername       = "root"
	rootPreferredName  = "Chief Officer"
	rootPassword       = "Root-Password-123!"
	changedPassword    = "Changed-Password-456!"
	personnelNumber    = "FS-1001"
	personnelFullName  = "Station Firefighter"
	stationAdminName   = "stationadmin"
	stationAdminFullNm = "Station Officer"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building firegate Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up firegate Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/firegate/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

func baseEnv() map[string]string {
	return map[string]string{
		"BOOTSTRAP_TOKEN":        bootstrapToken,
		"FIREGATE_ISSUER":        "firegate-e2e",
		"FIREGATE_NUM_KEYS":      "1",
		"FIREGATE_COOKIE_SECURE": "false",
		"ENV":                    "test",
		"LOG_LEVEL":              "info",
		"LOG_FORMAT":             "json",
	}
}

// setupGatewayContainer starts firegate with relaxed rate limits and returns
// the base URL.
func setupGatewayContainer(t *testing.T) string {
	t.Helper()

	env := baseEnv()
	// Tests make many rapid requests which would otherwise hit the strict limits
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"

	return startContainer(t, env)
}

// setupGatewayContainerWithDefaultRateLimits starts firegate with the
// production rate limits. Only rate limit tests should use it.
func setupGatewayContainerWithDefaultRateLimits(t *testing.T) string {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// bootstrapRoot creates the first SuperAdmin and returns a client signed in
// as that principal.
func bootstrapRoot(t *testing.T, baseURL string) *gatewaysdk.Client {
	t.Helper()
	ctx := t.Context()

	client := gatewaysdk.NewClient(baseURL)
	resp, err := client.Bootstrap(ctx, bootstrapToken, gatewaysdk.BootstrapRequest{
		Username:      rootUsername,
		PreferredName: rootPreferredName,
		Password:      rootPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.Equal(t, "SuperAdmin", resp.Principal.Role)

	login, err := client.Login(ctx, gatewaysdk.KindSuperAdmin, gatewaysdk.LoginRequest{
		Username: rootUsername,
		Password: rootPassword,
	})
	require.NoError(t, err, "SuperAdmin login should succeed")
	require.Equal(t, "/dashboard/superadmin", login.RedirectTo)

	return client
}

// assertAPIError checks that err carries the given catalogue code.
func assertAPIError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)

	var ae *gatewaysdk.AuthError
	require.ErrorAs(t, err, &ae, "expected an API error, got %v", err)
	require.Equal(t, code, ae.Code)
}
