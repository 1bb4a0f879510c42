package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/firegate/pkg/cryptox"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/firegate/pkg/jwtx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const bootstrapToken = "test-bootstrap-token"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "firegate-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testServer struct {
	*httptest.Server
	store *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "https://firegate.test", NumKeys: 1})
	require.NoError(t, err)

	r := NewRouter(st, slogx.Discard(), RouterOptions{Keys: km, BuildVersion: "test"})
	r.AuthService = &service.AuthService{Store: st, Keys: km, SessionTTL: time.Hour}
	r.PrincipalService = &service.PrincipalService{Store: st}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: bootstrapToken}
	r.UnitService = &service.UnitService{Store: st}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: st}
}

// superAdmin bootstraps the service and returns a signed-in client.
func (s *testServer) superAdmin(t *testing.T) *gatewaysdk.Client {
	t.Helper()
	ctx := context.Background()

	c := gatewaysdk.NewClient(s.URL)
	_, err := c.Bootstrap(ctx, bootstrapToken, gatewaysdk.BootstrapRequest{
		Username:      "root",
		PreferredName: "Root",
		Password:      "a-strong-password",
	})
	require.NoError(t, err)

	resp, err := c.Login(ctx, gatewaysdk.KindSuperAdmin, gatewaysdk.LoginRequest{Username: "root", Password: "a-strong-password"})
	require.NoError(t, err)
	require.Equal(t, "/dashboard/superadmin", resp.RedirectTo)
	return c
}

func (s *testServer) seedStation(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.store.Organisation().UpsertDepartment(ctx, domain.Department{ID: "D1", Name: "Metro"}))
	require.NoError(t, s.store.Organisation().UpsertStation(ctx, domain.Station{ID: "S1", Name: "Central", DepartmentID: "D1"}))
	require.NoError(t, s.store.Units().UpsertUnit(ctx, domain.Unit{ID: "U1", Callsign: "Pumper 1", StationID: "S1"}))
}

// getPage requests path without following redirects.
func (s *testServer) getPage(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestProvisionedPersonnelLoginFlow(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	srv.seedStation(t)
	root := srv.superAdmin(t)

	created, err := root.ProvisionPrincipal(ctx, gatewaysdk.ProvisionPrincipalRequest{
		Kind:          gatewaysdk.KindPersonnel,
		Role:          "FirePersonnel",
		ServiceNumber: "FS-1001",
		PreferredName: "Sam",
		UnitID:        "U1",
	})
	require.NoError(t, err)
	require.Equal(t, "S1", created.Principal.StationID)
	require.True(t, created.Principal.MustChangePassword)

	var redirects []string
	crew := gatewaysdk.NewClient(srv.URL)
	flow := gatewaysdk.NewLoginFlow(crew, gatewaysdk.KindPersonnel, func(path string) {
		redirects = append(redirects, path)
	})

	require.NoError(t, flow.Login(ctx, "FS-1001", created.TemporaryPassword))
	snap := flow.Snapshot()
	require.Equal(t, gatewaysdk.StatePasswordChangeRequired, snap.State)
	require.Equal(t, created.Principal.ID, snap.PendingPrincipalID)
	require.Empty(t, redirects)

	require.NoError(t, flow.ChangePassword(ctx, "a-new-password"))
	require.Equal(t, gatewaysdk.StateAuthenticated, flow.State())
	require.Equal(t, []string{"/dashboard/unit"}, redirects)

	sess, err := crew.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "FS-1001", sess.Principal.ServiceNumber)
	require.False(t, sess.Principal.MustChangePassword)
	require.Equal(t, "/dashboard/unit", sess.DashboardPath)

	token := crew.SessionToken()
	require.NoError(t, flow.Logout(ctx))

	stale := gatewaysdk.NewClient(srv.URL)
	stale.SetSessionToken(token)
	_, err = stale.Session(ctx)
	require.ErrorIs(t, err, gatewaysdk.ErrInvalidSession)
}

func TestLoginErrors(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	srv.superAdmin(t)

	c := gatewaysdk.NewClient(srv.URL)

	_, err := c.Login(ctx, gatewaysdk.KindSuperAdmin, gatewaysdk.LoginRequest{Username: "root", Password: "wrong-password"})
	require.ErrorIs(t, err, gatewaysdk.ErrInvalidCredentials)

	_, err = c.Login(ctx, gatewaysdk.KindGeneral, gatewaysdk.LoginRequest{Username: "root", Password: "a-strong-password"})
	require.ErrorIs(t, err, gatewaysdk.ErrInvalidCredentials, "superadmin cannot log in through the civilian kind")

	_, err = c.Login(ctx, "firefighter", gatewaysdk.LoginRequest{Username: "root", Password: "a-strong-password"})
	require.ErrorIs(t, err, gatewaysdk.ErrUnknownKind)

	// Bypass client-side validation to check the server rejects it too.
	resp, err := http.Post(srv.URL+"/v1/auth/personnel/login", "application/json",
		strings.NewReader(`{"username":"root","password":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body gatewaysdk.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, gatewaysdk.ErrorCodeValidation, body.Code)
	require.Contains(t, body.Fields, "service_number")
}

func TestLoginRateLimitIsPerKind(t *testing.T) {
	srv := newTestServer(t)

	post := func(kind, body string) int {
		t.Helper()
		resp, err := http.Post(srv.URL+"/v1/auth/"+kind+"/login", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	for range 5 {
		require.Equal(t, http.StatusUnauthorized, post("superadmin", `{"username":"alice","password":"wrong"}`))
	}
	require.Equal(t, http.StatusTooManyRequests, post("superadmin", `{"username":"alice","password":"wrong"}`))

	// Locking alice out of the superadmin login leaves every other login alone.
	require.Equal(t, http.StatusUnauthorized, post("superadmin", `{"username":"bob","password":"wrong"}`))
	require.Equal(t, http.StatusUnauthorized, post("general", `{"username":"alice","password":"wrong"}`))
	require.Equal(t, http.StatusUnauthorized, post("station-admin", `{"username":"alice","password":"wrong"}`))
	require.Equal(t, http.StatusUnauthorized, post("personnel", `{"service_number":"alice","password":"wrong"}`))
}

func TestPageGuard(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	root := srv.superAdmin(t)
	token := root.SessionToken()

	t.Run("allowed page renders context", func(t *testing.T) {
		resp := srv.getPage(t, "/dashboard/superadmin/audit-logs", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page gatewaysdk.PageResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
		require.Equal(t, "/dashboard/superadmin/audit-logs", page.Page.Pattern)
		require.Equal(t, "SuperAdmin", page.Principal.Role)
	})

	t.Run("wrong role goes to own dashboard", func(t *testing.T) {
		resp := srv.getPage(t, "/dashboard/admin/units", token)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/dashboard/superadmin", resp.Header.Get("Location"))
	})

	t.Run("anonymous goes to the page's login", func(t *testing.T) {
		resp := srv.getPage(t, "/dashboard/admin/units", "")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/login/station-admin", resp.Header.Get("Location"))

		resp = srv.getPage(t, "/portal", "")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("unknown page", func(t *testing.T) {
		resp := srv.getPage(t, "/dashboard/nowhere", token)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("guard endpoint", func(t *testing.T) {
		g, err := root.Guard(ctx, "/dashboard/superadmin")
		require.NoError(t, err)
		require.Equal(t, gatewaysdk.DecisionAllow, g.Decision)

		g, err = root.Guard(ctx, "/dashboard/operations/emergency-calls")
		require.NoError(t, err)
		require.Equal(t, gatewaysdk.DecisionRedirect, g.Decision)
		require.Equal(t, "/dashboard/superadmin", g.Location)

		anon := gatewaysdk.NewClient(srv.URL)
		g, err = anon.Guard(ctx, "/dashboard/unit")
		require.NoError(t, err)
		require.Equal(t, "/login/personnel", g.Location)
	})
}

func TestStationAdminScope(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	srv.seedStation(t)
	require.NoError(t, srv.store.Organisation().UpsertStation(ctx, domain.Station{ID: "S2", Name: "Harbour"}))
	require.NoError(t, srv.store.Units().UpsertUnit(ctx, domain.Unit{ID: "U2", Callsign: "Ladder 2", StationID: "S2"}))
	root := srv.superAdmin(t)

	created, err := root.ProvisionPrincipal(ctx, gatewaysdk.ProvisionPrincipalRequest{
		Kind:          gatewaysdk.KindStationAdmin,
		Role:          "StationAdmin",
		Username:      "central",
		PreferredName: "Central Admin",
		StationID:     "S1",
	})
	require.NoError(t, err)

	admin := gatewaysdk.NewClient(srv.URL)
	_, err = admin.Login(ctx, gatewaysdk.KindStationAdmin, gatewaysdk.LoginRequest{Username: "central", Password: created.TemporaryPassword})
	var pcr *gatewaysdk.PasswordChangeRequiredError
	require.ErrorAs(t, err, &pcr)

	resp, err := admin.ChangePassword(ctx, gatewaysdk.KindStationAdmin, gatewaysdk.ChangePasswordRequest{
		ID:          pcr.PrincipalID,
		NewPassword: "central-password",
		ChangeToken: pcr.ChangeToken,
	})
	require.NoError(t, err)
	require.Equal(t, "/dashboard/admin", resp.RedirectTo)

	units, err := admin.ListUnits(ctx, "S2")
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Equal(t, "U1", units[0].ID)
	require.Nil(t, units[0].Active, "flag never set stays unknown")

	u, err := admin.SetUnitActive(ctx, "U1", false)
	require.NoError(t, err)
	require.NotNil(t, u.Active)
	require.False(t, *u.Active)

	_, err = admin.SetUnitActive(ctx, "U2", true)
	require.ErrorIs(t, err, gatewaysdk.ErrInsufficientRole)

	_, err = admin.SetUnitActive(ctx, "U404", true)
	require.ErrorIs(t, err, gatewaysdk.ErrNotFound)

	_, err = admin.ProvisionPrincipal(ctx, gatewaysdk.ProvisionPrincipalRequest{
		Kind:          gatewaysdk.KindSuperAdmin,
		Role:          "SuperAdmin",
		Username:      "sneaky",
		PreferredName: "Sneaky",
	})
	require.ErrorIs(t, err, gatewaysdk.ErrInsufficientRole)

	_, err = admin.ProvisionPrincipal(ctx, gatewaysdk.ProvisionPrincipalRequest{
		Kind:          gatewaysdk.KindGeneral,
		Role:          "Civilian",
		Username:      "resident",
		PreferredName: "Resident",
	})
	require.NoError(t, err)

	ps, err := admin.ListPrincipals(ctx, "")
	require.NoError(t, err)
	require.Len(t, ps, 2, "own station only: the admin and the resident")
}

func TestBootstrapEndpoint(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c := gatewaysdk.NewClient(srv.URL)

	req := gatewaysdk.BootstrapRequest{Username: "root", PreferredName: "Root", Password: "a-strong-password"}

	_, err := c.Bootstrap(ctx, "wrong", req)
	require.ErrorIs(t, err, gatewaysdk.ErrInvalidCredentials)

	_, err = c.Bootstrap(ctx, bootstrapToken, req)
	require.NoError(t, err)

	_, err = c.Bootstrap(ctx, bootstrapToken, req)
	require.ErrorIs(t, err, gatewaysdk.ErrAlreadyBootstrapped)
}

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c := gatewaysdk.NewClient(srv.URL)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks["database"])
	require.Equal(t, "ok", ready.Checks["signer"])

	resp, err := http.Get(srv.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	var jwks jwtx.JWKS
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jwks))
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
}
