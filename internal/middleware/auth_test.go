package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/utils"
)

const testSecret = "test-secret"

func run(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleRenter, 5)
	require.NoError(t, err)

	rec, c := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleRenter, c.Get("role"))
	assert.Equal(t, uint64(42), c.Get("user_id"), "subject normalized to uint64")
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := run(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, model.RoleRenter, 5)
	require.NoError(t, err)

	rec, _ := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthLargeSubject(t *testing.T) {
	// IDs above 2^53 do not survive a float64 round trip; the string sub
	// claim must carry them through exactly.
	const bigID = uint64(1)<<60 + 7
	tok, err := utils.NewAccessToken(testSecret, bigID, model.RoleProvider, 5)
	require.NoError(t, err)

	rec, c := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bigID, c.Get("user_id"))
}

func TestClientIDKeyedPerUser(t *testing.T) {
	// The per-user bucket only engages when the limiter runs after
	// JWTAuth and reads the uint64 subject it stored.
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleRenter, 5)
	require.NoError(t, err)

	_, c := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, "42", clientID(c))
}

func TestClientIDAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "anon", clientID(c))
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		want    int
	}{
		{"allowed", model.RoleProvider, []string{model.RoleProvider}, http.StatusOK},
		{"one of several", model.RoleRenter, []string{model.RoleProvider, model.RoleRenter}, http.StatusOK},
		{"wrong role", model.RoleRenter, []string{model.RoleProvider}, http.StatusForbidden},
		{"missing role", nil, []string{model.RoleProvider}, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if tc.role != nil {
			c.Set("role", tc.role)
		}
		h := RequireRole(tc.allowed...)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		require.NoError(t, h(c), tc.name)
		assert.Equal(t, tc.want, rec.Code, tc.name)
	}
}
