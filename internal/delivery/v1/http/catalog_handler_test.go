package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DRSN-tech/catalog-api/internal/cfg"
	"github.com/DRSN-tech/catalog-api/internal/domain"
	"github.com/DRSN-tech/catalog-api/internal/usecase"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/DRSN-tech/catalog-api/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogUC struct {
	addCategory func(ctx context.Context, req *usecase.AddCategoryReq) (*domain.Category, error)
	addProduct  func(ctx context.Context, req *usecase.AddProductReq) (*domain.Product, error)

	lastCategoryReq *usecase.AddCategoryReq
	lastProductReq  *usecase.AddProductReq
}

func (f *fakeCatalogUC) AddCategory(ctx context.Context, req *usecase.AddCategoryReq) (*domain.Category, error) {
	f.lastCategoryReq = req
	if f.addCategory != nil {
		return f.addCategory(ctx, req)
	}
	return &domain.Category{ID: 1, Name: req.Name}, nil
}

func (f *fakeCatalogUC) AddProduct(ctx context.Context, req *usecase.AddProductReq) (*domain.Product, error) {
	f.lastProductReq = req
	if f.addProduct != nil {
		return f.addProduct(ctx, req)
	}
	return &domain.Product{ID: 1, Name: req.Name, CategoryID: 1}, nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, uc usecase.CatalogUC, db Pinger) (http.Handler, *metrics.Metrics) {
	t.Helper()

	m := metrics.New()
	r := chi.NewRouter()
	NewRouter(r, logger.NewNop()).Init(uc, db, m, &cfg.HTTPConfig{AllowedOrigins: []string{"*"}})
	return r, m
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAddCategory(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		ucErr      error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "created",
			body:       `{"category":"Fruits"}`,
			wantStatus: http.StatusCreated,
			wantBody:   `{"message":"Category added successfully"}`,
		},
		{
			name:       "already exists",
			body:       `{"category":"Fruits"}`,
			ucErr:      e.Wrap("op", e.ErrCategoryAlreadyExists),
			wantStatus: http.StatusConflict,
			wantBody:   `{"message":"Category already exists"}`,
		},
		{
			name:       "required",
			body:       `{"category":"   "}`,
			ucErr:      e.Wrap("op", e.ErrCategoryRequired),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Category is required"}`,
		},
		{
			name:       "malformed json",
			body:       `{"category":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid JSON body"}`,
		},
		{
			name:       "non string field",
			body:       `{"category":42}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid JSON body"}`,
		},
		{
			name:       "trailing data",
			body:       `{"category":"Fruits"} {}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid JSON body"}`,
		},
		{
			name:       "unexpected failure",
			body:       `{"category":"Fruits"}`,
			ucErr:      errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeCatalogUC{}
			if tt.ucErr != nil {
				uc.addCategory = func(context.Context, *usecase.AddCategoryReq) (*domain.Category, error) {
					return nil, tt.ucErr
				}
			}
			h, _ := newTestRouter(t, uc, fakePinger{})

			rec := doRequest(h, http.MethodPost, "/addCategory", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestAddCategory_PassesRawName(t *testing.T) {
	uc := &fakeCatalogUC{}
	h, _ := newTestRouter(t, uc, fakePinger{})

	rec := doRequest(h, http.MethodPost, "/addCategory", `{"category":"  Fruits  "}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.lastCategoryReq)
	assert.Equal(t, "  Fruits  ", uc.lastCategoryReq.Name)
}

func TestAddCategory_MissingFieldReachesValidation(t *testing.T) {
	uc := &fakeCatalogUC{}
	h, _ := newTestRouter(t, uc, fakePinger{})

	doRequest(h, http.MethodPost, "/addCategory", `{}`)

	require.NotNil(t, uc.lastCategoryReq)
	assert.Equal(t, "", uc.lastCategoryReq.Name)
}

func TestAddProduct(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		ucErr      error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "created",
			body:       `{"category":"Fruits","product":"Apple"}`,
			wantStatus: http.StatusCreated,
			wantBody:   `{"message":"Product added successfully"}`,
		},
		{
			name:       "category missing",
			body:       `{"category":"Nope","product":"Apple"}`,
			ucErr:      e.Wrap("op", e.ErrCategoryNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Category does not exist"}`,
		},
		{
			name:       "already exists",
			body:       `{"category":"Fruits","product":"Apple"}`,
			ucErr:      e.Wrap("op", e.ErrProductAlreadyExists),
			wantStatus: http.StatusConflict,
			wantBody:   `{"message":"Product already exists in category"}`,
		},
		{
			name:       "required",
			body:       `{"category":"Fruits"}`,
			ucErr:      e.Wrap("op", e.ErrCategoryAndProductRequired),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Both category and product are required"}`,
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid JSON body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeCatalogUC{}
			if tt.ucErr != nil {
				uc.addProduct = func(context.Context, *usecase.AddProductReq) (*domain.Product, error) {
					return nil, tt.ucErr
				}
			}
			h, _ := newTestRouter(t, uc, fakePinger{})

			rec := doRequest(h, http.MethodPost, "/addProduct", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAddProduct_MapsFields(t *testing.T) {
	uc := &fakeCatalogUC{}
	h, _ := newTestRouter(t, uc, fakePinger{})

	doRequest(h, http.MethodPost, "/addProduct", `{"category":"Fruits","product":"Apple"}`)

	require.NotNil(t, uc.lastProductReq)
	assert.Equal(t, "Fruits", uc.lastProductReq.CategoryName)
	assert.Equal(t, "Apple", uc.lastProductReq.Name)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t, &fakeCatalogUC{}, fakePinger{})

	rec := doRequest(h, http.MethodGet, "/addCategory", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_PanicRecovered(t *testing.T) {
	uc := &fakeCatalogUC{
		addCategory: func(context.Context, *usecase.AddCategoryReq) (*domain.Category, error) {
			panic("boom")
		},
	}
	h, m := newTestRouter(t, uc, fakePinger{})

	rec := doRequest(h, http.MethodPost, "/addCategory", `{"category":"Fruits"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "catalog_http_requests_total"))
}

func TestRouter_CORS(t *testing.T) {
	h, _ := newTestRouter(t, &fakeCatalogUC{}, fakePinger{})

	req := httptest.NewRequest(http.MethodOptions, "/addCategory", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRouter_RequestID(t *testing.T) {
	h, _ := newTestRouter(t, &fakeCatalogUC{}, fakePinger{})

	rec := doRequest(h, http.MethodPost, "/addCategory", `{"category":"Fruits"}`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodPost, "/addCategory", strings.NewReader(`{"category":"Fruits"}`))
	req.Header.Set("X-Request-Id", "req-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, &fakeCatalogUC{}, fakePinger{})

	doRequest(h, http.MethodPost, "/addCategory", `{"category":"Fruits"}`)
	rec := doRequest(h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_http_requests_total{method="POST",route="/addCategory",status_code="201"} 1`)
}

func TestHealthz(t *testing.T) {
	h, _ := newTestRouter(t, &fakeCatalogUC{}, fakePinger{})

	rec := doRequest(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	h, _ = newTestRouter(t, &fakeCatalogUC{}, fakePinger{err: errors.New("dial tcp: refused")})

	rec = doRequest(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"Database unavailable"}`, rec.Body.String())
}

func TestToHTTPResponse_Unknown(t *testing.T) {
	code, resp := ToHTTPResponse(errors.New("whatever"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", resp.Error)
	assert.Empty(t, resp.Message)
}
