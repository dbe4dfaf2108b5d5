package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moveis-catalog/internal/analytics"
	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/middleware"
	"moveis-catalog/internal/service"
	"moveis-catalog/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	testAdminUsername = "loja"
	testAdminPassword = "carvalho-moveis"
	testStorePhone    = "5561998605145"
)

type testEnv struct {
	t          *testing.T
	router     http.Handler
	products   *memProductRepository
	promotions *memPromotionRepository
	events     *memEventRepository
	tracker    *analytics.Tracker
	store      storage.ObjectStore
	token      string
	refresh    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	env := &testEnv{
		t:          t,
		products:   newMemProductRepository(),
		promotions: &memPromotionRepository{},
		events:     &memEventRepository{},
		store:      storage.NewStore(afero.NewMemMapFs(), "product-images", "/media"),
	}
	env.tracker = analytics.NewTracker(env.events, logger)

	admins := &memAdminRepository{admins: map[string]*domain.Admin{}}
	sessions := &memSessionRepository{sessions: map[string]*domain.Session{}}
	auth, err := service.NewAuthService(admins, sessions, service.TokenConfig{Secret: "transport-test-secret-of-32-bytes"})
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}
	if _, _, err := auth.EnsureAdmin(ctx, testAdminUsername, testAdminPassword); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	protect := func(next http.Handler) http.Handler {
		return middleware.AuthMiddleware(auth, logger)(middleware.RequireAdmin(logger)(next))
	}
	passthrough := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	NewAuthHandler(auth, logger).RegisterRoutes(r, protect, passthrough)
	NewCatalogHandler(
		service.NewCatalogService(env.products, env.promotions, nil, logger),
		service.NewContactLinks(testStorePhone),
		logger,
	).RegisterRoutes(r)
	NewProductHandler(service.NewProductService(env.products, logger), logger).RegisterRoutes(r, protect)
	NewPromotionHandler(service.NewPromotionService(env.promotions, env.products, logger), logger).RegisterRoutes(r, protect)
	NewImageHandler(service.NewImageService(env.store, 1, logger), 1, logger).RegisterRoutes(r, protect)
	NewAnalyticsHandler(env.tracker, logger).RegisterRoutes(r, protect, passthrough)
	NewSetupHandler(service.NewSetupService(okPinger{}, env.products, env.promotions, env.store, logger), logger).RegisterRoutes(r, protect)
	r.Handle("/media/*", http.StripPrefix("/media", env.store.Handler()))
	env.router = r

	access, refresh, _, err := auth.Login(ctx, testAdminUsername, testAdminPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	env.token, env.refresh = access, refresh
	return env
}

// addProduct stores a product created age ago.
func (e *testEnv) addProduct(id, category, price string, age time.Duration) {
	e.products.products[id] = domain.Product{
		ID:        id,
		Name:      "Produto " + id,
		Category:  category,
		Price:     price,
		CreatedAt: time.Now().Add(-age),
		UpdatedAt: time.Now().Add(-age),
	}
}

func (e *testEnv) addRunningPromotion(id, productID string, pct int) {
	e.promotions.promotions = append(e.promotions.promotions, domain.Promotion{
		ID:                 id,
		ProductID:          productID,
		DiscountPercentage: pct,
		StartDate:          time.Now().Add(-time.Hour),
		EndDate:            time.Now().Add(time.Hour),
		IsActive:           true,
		CreatedAt:          time.Now(),
	})
}

// do sends a request; body is JSON-encoded unless it is an io.Reader.
func (e *testEnv) do(method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			ValidationErrors []middleware.ValidationError `json:"validation_errors"`
		} `json:"details"`
	} `json:"error"`
}

func validationFields(t *testing.T, w *httptest.ResponseRecorder) map[string]bool {
	t.Helper()
	var body errorBody
	decodeBody(t, w, &body)
	fields := map[string]bool{}
	for _, ve := range body.Error.Details.ValidationErrors {
		fields[ve.Field] = true
	}
	return fields
}
