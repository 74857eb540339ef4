package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/gatekeeper/internal/auth/http"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/metrics"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/totpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testIssuer = "gatekeeper-test"

var (
	signingKey = []byte(strings.Repeat("s", 48))
	fixedNow   = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
)

func TestMain(m *testing.M) {
	cryptox.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testServer struct {
	router  *httpapi.Router
	store   *sqlite.Store
	signer  jwtx.Signer
	tokens  *service.TokenService
	engine  *totpx.Engine
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, requireSession bool) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewSignerHS256("test", signingKey)
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry(), "auth-test")
	tokens := &service.TokenService{Signer: signer, Issuer: testIssuer, Metrics: m}
	engine := totpx.NewEngine("AuthProject")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(signer, jwtx.NewCommonHS256(signingKey, testIssuer, nil), "test", st, m, logger)
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens, Metrics: m}
	router.TwoFactorService = &service.TwoFactorService{
		Store:    st,
		Engine:   engine,
		Renderer: totpx.PNGRenderer{Size: 128},
		Tokens:   tokens,
		Label:    service.LabelUserID,
		Metrics:  m,
		Now:      func() time.Time { return fixedNow },
	}
	router.RequireSession = requireSession
	router.ApplyRoutes()

	return &testServer{router: router, store: st, signer: signer, tokens: tokens, engine: engine, metrics: m}
}

func (s *testServer) createUser(t *testing.T, email, password string) domain.User {
	t.Helper()
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	u, err := s.store.Users().CreateUser(context.Background(), domain.User{Email: email, PasswordHash: hash})
	require.NoError(t, err)
	return u
}

func (s *testServer) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v), rec.Body.String())
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[authsdk.ErrorResponse](t, rec)
	require.Equal(t, code, body.Error)
	require.NotEmpty(t, body.Message)
}

func userBody(id int64) string {
	return `{"userId":` + strconv.FormatInt(id, 10) + `}`
}

func TestLogin_Success(t *testing.T) {
	s := newTestServer(t, false)
	u := s.createUser(t, "alice@example.com", "hunter2")

	rec := s.do(t, http.MethodPost, "/v1/login", `{"email":"alice@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	resp := decode[authsdk.TokenResponse](t, rec)
	require.Equal(t, u.ID, resp.UserID)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 300, resp.ExpiresIn)

	claims, err := jwtx.NewVerifierHS256(signingKey, testIssuer, nil).Verify(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, strconv.FormatInt(u.ID, 10), claims.Subject)
}

func TestLogin_TwoFactorRequired(t *testing.T) {
	s := newTestServer(t, false)
	u := s.createUser(t, "alice@example.com", "hunter2")
	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	require.NoError(t, s.store.Users().UpdateTwoFactor(context.Background(), u.ID, &secret, true))

	rec := s.do(t, http.MethodPost, "/v1/login", `{"email":"alice@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	resp := decode[map[string]any](t, rec)
	require.Equal(t, float64(u.ID), resp["userId"])
	require.Equal(t, "2FA_REQUIRED", resp["status"])
	require.NotContains(t, resp, "accessToken")
}

func TestLogin_Rejects(t *testing.T) {
	s := newTestServer(t, false)
	s.createUser(t, "alice@example.com", "hunter2")

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"wrong password", `{"email":"alice@example.com","password":"wrong"}`, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials},
		{"unknown email", `{"email":"bob@example.com","password":"hunter2"}`, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials},
		{"missing password", `{"email":"alice@example.com"}`, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"missing email", `{"password":"hunter2"}`, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"malformed json", `{"email":`, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"empty body", ``, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireError(t, s.do(t, http.MethodPost, "/v1/login", tt.body), tt.status, tt.code)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, false)

	for _, path := range []string{"/v1/login", "/v1/2fa/activate", "/v1/2fa/verify", "/v1/2fa/disable"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			t.Run(method+" "+path, func(t *testing.T) {
				rec := s.do(t, method, path, "")
				requireError(t, rec, http.StatusMethodNotAllowed, authsdk.ErrorCodeMethodNotAllowed)
				require.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
			})
		}
	}
}

func TestTwoFactor_ActivateVerifyRoundTrip(t *testing.T) {
	s := newTestServer(t, false)
	u := s.createUser(t, "alice@example.com", "hunter2")

	rec := s.do(t, http.MethodPost, "/v1/2fa/activate", userBody(u.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	act := decode[authsdk.ActivateTwoFactorResponse](t, rec)
	require.NotEmpty(t, act.SecretKey)
	require.True(t, strings.HasPrefix(act.ProvisioningURI, "otpauth://totp/"))
	require.Contains(t, act.ProvisioningURI, "secret="+act.SecretKey)
	png, err := base64.StdEncoding.DecodeString(act.QRCodeImageBase64)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	// Login now stops at the second factor.
	rec = s.do(t, http.MethodPost, "/v1/login", `{"email":"alice@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	code, err := s.engine.GenerateCode(act.SecretKey, fixedNow)
	require.NoError(t, err)

	rec = s.do(t, http.MethodPost, "/v1/2fa/verify",
		`{"userId":`+strconv.FormatInt(u.ID, 10)+`,"totpCode":"`+code+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tok := decode[authsdk.TokenResponse](t, rec)
	require.Equal(t, u.ID, tok.UserID)
	claims, err := jwtx.NewVerifierHS256(signingKey, testIssuer, nil).Verify(tok.AccessToken)
	require.NoError(t, err)
	require.Contains(t, claims.AMR, jwtx.AMRMFA)
}

func TestTwoFactor_VerifyRejects(t *testing.T) {
	s := newTestServer(t, false)
	plain := s.createUser(t, "plain@example.com", "pw")
	enabled := s.createUser(t, "enabled@example.com", "pw")
	broken := s.createUser(t, "broken@example.com", "pw")

	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	ctx := context.Background()
	require.NoError(t, s.store.Users().UpdateTwoFactor(ctx, enabled.ID, &secret, true))
	require.NoError(t, s.store.Users().UpdateTwoFactor(ctx, broken.ID, nil, true))

	stale, err := s.engine.GenerateCode(secret, fixedNow.Add(-2*30*time.Second))
	require.NoError(t, err)

	verify := func(id int64, code string) string {
		return `{"userId":` + strconv.FormatInt(id, 10) + `,"totpCode":"` + code + `"}`
	}

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"not enabled", verify(plain.ID, "123456"), http.StatusNotFound, authsdk.ErrorCodeTwoFactorNotEnabled},
		{"unknown user", verify(9999, "123456"), http.StatusNotFound, authsdk.ErrorCodeTwoFactorNotEnabled},
		{"two steps old", verify(enabled.ID, stale), http.StatusUnauthorized, authsdk.ErrorCodeInvalidTOTPCode},
		{"garbage code", verify(enabled.ID, "abcdef"), http.StatusUnauthorized, authsdk.ErrorCodeInvalidTOTPCode},
		{"enabled without secret", verify(broken.ID, "123456"), http.StatusInternalServerError, authsdk.ErrorCodeInconsistentState},
		{"missing code", userBody(enabled.ID), http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"zero user", verify(0, "123456"), http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"string user id", `{"userId":"1","totpCode":"123456"}`, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireError(t, s.do(t, http.MethodPost, "/v1/2fa/verify", tt.body), tt.status, tt.code)
		})
	}
}

func TestTwoFactor_ActivateUnknownUser(t *testing.T) {
	s := newTestServer(t, false)
	requireError(t, s.do(t, http.MethodPost, "/v1/2fa/activate", userBody(404)), http.StatusInternalServerError, authsdk.ErrorCodeActivationFailed)
	requireError(t, s.do(t, http.MethodPost, "/v1/2fa/activate", `{}`), http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
}

func TestTwoFactor_Disable(t *testing.T) {
	s := newTestServer(t, false)
	u := s.createUser(t, "alice@example.com", "hunter2")

	rec := s.do(t, http.MethodPost, "/v1/2fa/activate", userBody(u.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodPost, "/v1/2fa/disable", userBody(u.ID))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, "2FA disabled successfully", decode[authsdk.MessageResponse](t, rec).Message)
	}

	got, err := s.store.Users().FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.False(t, got.TwoFactorEnabled)
	require.Nil(t, got.TwoFactorSecret)

	rec = s.do(t, http.MethodPost, "/v1/login", `{"email":"alice@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/2fa/disable", userBody(777))
	require.Equal(t, http.StatusOK, rec.Code, "disabling an unknown id is a no-op")
}

func TestTwoFactor_StoreFailure(t *testing.T) {
	s := newTestServer(t, false)
	u := s.createUser(t, "alice@example.com", "hunter2")
	require.NoError(t, s.store.Close())

	rec := s.do(t, http.MethodPost, "/v1/2fa/activate", userBody(u.ID))
	requireError(t, rec, http.StatusInternalServerError, authsdk.ErrorCodeActivationFailed)
	require.NotContains(t, rec.Body.String(), "secretKey")
	require.NotContains(t, rec.Body.String(), "database is closed")

	rec = s.do(t, http.MethodPost, "/v1/2fa/verify", `{"userId":`+strconv.FormatInt(u.ID, 10)+`,"totpCode":"123456"}`)
	requireError(t, rec, http.StatusInternalServerError, authsdk.ErrorCodeServerError)

	rec = s.do(t, http.MethodPost, "/v1/2fa/disable", userBody(u.ID))
	requireError(t, rec, http.StatusInternalServerError, authsdk.ErrorCodeServerError)
}

func TestTwoFactor_RequireSession(t *testing.T) {
	s := newTestServer(t, true)
	alice := s.createUser(t, "alice@example.com", "hunter2")
	bob := s.createUser(t, "bob@example.com", "hunter3")

	pair, err := s.tokens.Issue(context.Background(), alice.ID, jwtx.AMRPassword)
	require.NoError(t, err)
	bearer := "Bearer " + pair.AccessToken

	t.Run("missing token", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/2fa/activate", userBody(alice.ID))
		requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("refresh token refused", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/2fa/activate", userBody(alice.ID), "Authorization", "Bearer "+pair.RefreshToken)
		requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
	})

	t.Run("other user", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/2fa/disable", userBody(bob.ID), "Authorization", bearer)
		requireError(t, rec, http.StatusForbidden, authsdk.ErrorCodeForbidden)
	})

	t.Run("own account", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/2fa/activate", userBody(alice.ID), "Authorization", bearer)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, http.MethodPost, "/v1/2fa/disable", userBody(alice.ID), "Authorization", bearer)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("verify stays public", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/2fa/verify", `{"userId":`+strconv.FormatInt(bob.ID, 10)+`,"totpCode":"123456"}`)
		requireError(t, rec, http.StatusNotFound, authsdk.ErrorCodeTwoFactorNotEnabled)
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodGet, "/livez", "")
	require.Equal(t, http.StatusOK, rec.Code)
	live := decode[authsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	rec = s.do(t, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[authsdk.HealthResponse](t, rec)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)

	require.NoError(t, s.store.Close())
	rec = s.do(t, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "error", decode[authsdk.HealthResponse](t, rec).Checks.Database)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	s.createUser(t, "alice@example.com", "hunter2")

	s.do(t, http.MethodPost, "/v1/login", `{"email":"alice@example.com","password":"hunter2"}`)
	s.do(t, http.MethodPost, "/v1/login", `{"email":"alice@example.com","password":"nope"}`)

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "auth_logins_total")
	require.Contains(t, body, `path="POST /v1/login"`)
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(t, http.MethodGet, "/livez", "", "X-Request-ID", "req-123")
	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
