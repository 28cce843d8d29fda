package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bidmarket/internal/config"
	"bidmarket/internal/http/handlers"
	"bidmarket/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		Port:         "0",
		DBDriver:     "sqlite",
		DBDSN:        ":memory:",
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		CORSOrigins:  "*",
		LoginRateMax: 100,
		BodyLimit:    1 << 20,
		BcryptCost:   bcrypt.MinCost,
	}
}

// newApp builds the full app over a fresh in-memory database.
func newApp(t *testing.T, tweak ...func(*config.Config)) (*fiber.App, *handlers.Deps) {
	t.Helper()
	cfg := testConfig()
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	deps, err := handlers.NewDeps(db, cfg, nil)
	require.NoError(t, err)
	return handlers.NewApp(cfg, deps), deps
}

// call sends body as JSON, or as a form when it is url.Values.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	ctype := ""
	switch b := body.(type) {
	case nil:
	case url.Values:
		rdr = strings.NewReader(b.Encode())
		ctype = fiber.MIMEApplicationForm
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
		ctype = fiber.MIMEApplicationJSON
	}
	req := httptest.NewRequest(method, path, rdr)
	if ctype != "" {
		req.Header.Set(fiber.HeaderContentType, ctype)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func obj(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func list(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(raw, &l), string(raw))
	return l
}

type account struct {
	ID    int64
	Token string
}

// signup registers name with role and logs in. Password is name+"-pw".
func signup(t *testing.T, app *fiber.App, name, role string) account {
	t.Helper()
	status, raw := call(t, app, http.MethodPost, "/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": name + "-pw", "role": role,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = call(t, app, http.MethodPost, "/login", "", map[string]string{
		"username": name, "password": name + "-pw",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	m := obj(t, raw)
	return account{ID: int64(m["user_id"].(float64)), Token: m["access_token"].(string)}
}

func createProduct(t *testing.T, app *fiber.App, admin account, name string) int64 {
	t.Helper()
	status, raw := call(t, app, http.MethodPost, "/products", admin.Token, map[string]any{
		"name": name, "description": "for sale", "price": 100.0, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	return int64(obj(t, raw)["id"].(float64))
}

func path(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}
