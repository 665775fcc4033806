package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/infra/security"
	"github.com/JLCarveth/blog/internal/repository"
	"github.com/JLCarveth/blog/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// blocklistStoreStub serves a fixed set of banned addresses.
type blocklistStoreStub struct {
	entries []domain.BlockedAddress
}

func (s *blocklistStoreStub) ListBlocked(context.Context) ([]domain.BlockedAddress, error) {
	return s.entries, nil
}

func (s *blocklistStoreStub) Insert(_ context.Context, entry domain.BlockedAddress) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *blocklistStoreStub) Remove(context.Context, string) error {
	return repository.ErrNotFound
}

// roleStoreStub serves a fixed role table.
type roleStoreStub struct {
	roles []domain.Role
}

func (s *roleStoreStub) Create(context.Context, domain.Role) error { return nil }
func (s *roleStoreStub) List(context.Context) ([]domain.Role, error) {
	return s.roles, nil
}
func (s *roleStoreStub) GetByName(context.Context, string) (*domain.Role, error) {
	return nil, repository.ErrNotFound
}
func (s *roleStoreStub) GrantPermissions(context.Context, string, []string) error  { return nil }
func (s *roleStoreStub) RevokePermissions(context.Context, string, []string) error { return nil }

var _ port.BlocklistRepository = (*blocklistStoreStub)(nil)
var _ port.RoleRepository = (*roleStoreStub)(nil)

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func blockedCache(t *testing.T, addresses ...string) *usecase.BlocklistCache {
	t.Helper()

	store := &blocklistStoreStub{}
	for _, address := range addresses {
		store.entries = append(store.entries, domain.BlockedAddress{Address: address})
	}

	cache := usecase.NewBlocklistCache(store, nil, zaptest.NewLogger(t))
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	return cache
}

func permissionCache(t *testing.T, roles ...domain.Role) *usecase.PermissionCache {
	t.Helper()

	cache := usecase.NewPermissionCache(&roleStoreStub{roles: roles}, zaptest.NewLogger(t))
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	return cache
}

func TestBlocklist_RejectsBannedAddress(t *testing.T) {
	cache := blockedCache(t, "203.0.113.5")

	router := gin.New()
	router.Use(EnrichContext(), Blocklist(cache))
	router.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:42000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestBlocklist_MatchesMappedForm(t *testing.T) {
	cache := blockedCache(t, "::ffff:203.0.113.5")

	router := gin.New()
	router.Use(Blocklist(cache))
	router.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:42000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for mapped form, got %d", rec.Code)
	}
}

func TestBlocklist_AllowsKnownGoodAddress(t *testing.T) {
	cache := blockedCache(t, "203.0.113.5")

	router := gin.New()
	router.Use(Blocklist(cache))
	router.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:42000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func authServiceForGate(t *testing.T) *usecase.AuthService {
	t.Helper()

	tracker := security.NewLockoutTracker(security.DefaultLockoutThreshold, security.DefaultDecayWindow)
	tokens := security.NewTokenService("gate-secret", "blog-platform", time.Hour)
	return usecase.NewAuthService(nil, tracker, tokens, nil, zaptest.NewLogger(t))
}

func issueToken(t *testing.T, email, role string) string {
	t.Helper()

	token, err := security.NewTokenService("gate-secret", "blog-platform", time.Hour).Issue(email, role)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	return token
}

func identityRouter(t *testing.T) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.Use(EnrichContext(), RequireAuth(authServiceForGate(t)))
	router.GET("/", func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no identity")
			return
		}
		c.String(http.StatusOK, identity.Email+"/"+identity.Role)
	})
	return router
}

func TestRequireAuth_HeaderToken(t *testing.T) {
	router := identityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, issueToken(t, "reader@example.com", "user"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "reader@example.com/user" {
		t.Fatalf("unexpected identity: %s", rec.Body.String())
	}
}

func TestRequireAuth_CookieToken(t *testing.T) {
	router := identityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: issueToken(t, "reader@example.com", "user")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAuth_HeaderWinsOverCookie(t *testing.T) {
	router := identityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, issueToken(t, "header@example.com", "author"))
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: issueToken(t, "cookie@example.com", "user")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Body.String() != "header@example.com/author" {
		t.Fatalf("expected header token to win, got %s", rec.Body.String())
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	router := identityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	router := identityRouter(t)

	token := issueToken(t, "reader@example.com", "user")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, token+"x")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequirePermission_AllowsGrantedRole(t *testing.T) {
	cache := permissionCache(t, domain.Role{Name: "author", Permissions: []string{"createPost"}})

	router := gin.New()
	router.Use(EnrichContext(), RequireAuth(authServiceForGate(t)), RequirePermission(cache, domain.RequirePermission("createPost")))
	router.POST("/", okHandler)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(TokenHeader, issueToken(t, "writer@example.com", "author"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermission_DeniesMissingPermission(t *testing.T) {
	cache := permissionCache(t, domain.Role{Name: "user", Permissions: []string{"readPost"}})

	router := gin.New()
	router.Use(EnrichContext(), RequireAuth(authServiceForGate(t)), RequirePermission(cache, domain.RequirePermission("createPost")))
	router.POST("/", okHandler)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(TokenHeader, issueToken(t, "reader@example.com", "user"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePermission_DeniesUnknownRole(t *testing.T) {
	cache := permissionCache(t, domain.Role{Name: "user", Permissions: []string{"readPost"}})

	router := gin.New()
	router.Use(EnrichContext(), RequireAuth(authServiceForGate(t)), RequirePermission(cache, domain.RequirePermission("readPost")))
	router.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, issueToken(t, "stale@example.com", "retired-role"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown role, got %d", rec.Code)
	}
}
