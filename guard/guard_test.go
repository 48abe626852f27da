package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/medibook/go-client/guard"
	"github.com/medibook/go-client/kv"
	"github.com/medibook/go-client/session"
	"github.com/stretchr/testify/require"
)

func storeWith(t *testing.T, sessions ...*session.Session) *session.Store {
	t.Helper()

	store, err := session.NewStore(kv.NewInMemory())
	require.NoError(t, err)
	for _, sess := range sessions {
		require.NoError(t, store.SetAuthData(sess))
	}
	return store
}

func doctor() *session.Session {
	return &session.Session{
		UserID:      "9",
		Username:    "drbob",
		Role:        session.RoleDoctor,
		AccessToken: "t-doc",
	}
}

func serve(t *testing.T, handler http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRequireRoleAdmits(t *testing.T) {
	g, err := guard.New(storeWith(t, doctor()))
	require.NoError(t, err)

	var seen *session.Session
	handler := g.RequireRole(session.RoleDoctor)(func(w http.ResponseWriter, r *http.Request) {
		seen = guard.UserFromContext(r.Context())
	})

	rec := serve(t, handler, "/doctor/schedule")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, "9", seen.UserID)
	require.Equal(t, "t-doc", seen.AccessToken)
}

func TestRequireRoleDeniesOtherRole(t *testing.T) {
	g, err := guard.New(storeWith(t, doctor()))
	require.NoError(t, err)

	handler := g.RequireRole(session.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := serve(t, handler, "/admin/reports")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "unauthorized")
}

func TestRequireRoleRedirects(t *testing.T) {
	g, err := guard.New(storeWith(t), guard.WithRedirect("/login"))
	require.NoError(t, err)

	handler := g.RequireRole(session.RolePatient)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := serve(t, handler, "/patient/appointments")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireRoleRejectsExpiredJWT(t *testing.T) {
	now := time.Now()
	stale, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "9",
		"exp": now.Add(-time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	sess := doctor()
	sess.AccessToken = stale

	g, err := guard.New(storeWith(t, sess), guard.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)

	handler := g.RequireRole(session.RoleDoctor)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := serve(t, handler, "/doctor/schedule")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAnyRole(t *testing.T) {
	g, err := guard.New(storeWith(t, doctor()))
	require.NoError(t, err)

	admitted := g.RequireAnyRole(session.RoleAdmin, session.RoleDoctor)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec := serve(t, admitted, "/shared/inbox")
	require.Equal(t, http.StatusNoContent, rec.Code)

	denied := g.RequireAnyRole(session.RoleAdmin, session.RolePatient)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	rec = serve(t, denied, "/shared/inbox")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.HandlerFunc) http.HandlerFunc {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(w, r)
			}
		}
	}

	handler := guard.Chain(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, tag("outer"), tag("inner"))

	serve(t, handler, "/")
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}
