package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/halcart/api/hal"
	"github.com/angelmondragon/halcart/internal/cart"
	"github.com/angelmondragon/halcart/pkg/config"
	"github.com/angelmondragon/halcart/pkg/logger"
	"github.com/angelmondragon/halcart/pkg/metrics"
)

type memoryIdempotency struct {
	data map[string]string
}

func (m *memoryIdempotency) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryIdempotency) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memoryIdempotency) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryIdempotency) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:%s:%s", scope, id)
}

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Env: "test"},
		HTTP:        config.HTTPConfig{CacheMaxAge: 10 * time.Second, MaxBodyBytes: 4096},
		HAL:         config.HALConfig{RelsHref: hal.DefaultRelsHref},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

type harness struct {
	handler http.Handler
	store   *cart.Store
}

func newHarness(t *testing.T) harness {
	t.Helper()
	reg := prometheus.NewRegistry()
	store := cart.NewStore()
	svc, err := cart.NewService(store, logger.Nop(), metrics.NewConditionalMetrics(reg))
	require.NoError(t, err)

	handler := NewRouter(testConfig(), logger.Nop(), svc, store, nil, &memoryIdempotency{data: map[string]string{}}, Observability{
		HTTP:     metrics.NewHTTPMetrics(reg),
		Gatherer: reg,
	})
	return harness{handler: handler, store: store}
}

func (h harness) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

func decodeCart(t *testing.T, resp *httptest.ResponseRecorder) hal.CartDocument {
	t.Helper()
	var doc hal.CartDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	return doc
}

func TestCartLifecycle(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodPost, "/cart", `{"items":[{"title":"A","quantity":3},{"title":"B","quantity":2}]}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, hal.ContentType, resp.Header().Get("Content-Type"))
	assert.Equal(t, "max-age=10, must-revalidate, public", resp.Header().Get("Cache-Control"))
	tag := resp.Header().Get("ETag")
	doc := decodeCart(t, resp)
	assert.Equal(t, 2, doc.ItemCount)
	assert.Equal(t, 5, doc.TotalQuantity)
	cartPath := doc.Links.Self.Href
	itemPath := doc.Links.Item[0].Href

	resp = h.do(http.MethodGet, cartPath, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, tag, resp.Header().Get("ETag"))

	resp = h.do(http.MethodGet, cartPath, "", "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, resp.Code)
	assert.Zero(t, resp.Body.Len())

	resp = h.do(http.MethodHead, cartPath, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, tag, resp.Header().Get("ETag"))
	assert.Zero(t, resp.Body.Len())

	resp = h.do(http.MethodPost, cartPath, `{"items":[{"title":"C","quantity":1}]}`, "If-Match", tag)
	require.Equal(t, http.StatusOK, resp.Code)
	added := resp.Header().Get("ETag")
	assert.NotEqual(t, tag, added)
	assert.Equal(t, 3, decodeCart(t, resp).ItemCount)

	resp = h.do(http.MethodPut, cartPath, `{"items":[{"title":"D","quantity":4}]}`, "If-Match", tag)
	assert.Equal(t, http.StatusPreconditionFailed, resp.Code, "stale tag")

	resp = h.do(http.MethodPut, cartPath, `{"items":[{"title":"D","quantity":4}]}`, "If-Match", added)
	require.Equal(t, http.StatusOK, resp.Code)
	replaced := resp.Header().Get("ETag")
	doc = decodeCart(t, resp)
	assert.Equal(t, 1, doc.ItemCount)
	assert.Equal(t, 4, doc.TotalQuantity)

	resp = h.do(http.MethodGet, itemPath, "")
	assert.Equal(t, http.StatusNotFound, resp.Code, "replaced items are gone")

	resp = h.do(http.MethodDelete, cartPath, "")
	assert.Equal(t, http.StatusPreconditionFailed, resp.Code, "delete needs If-Match")

	resp = h.do(http.MethodDelete, cartPath, "", "If-Match", replaced)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))

	resp = h.do(http.MethodGet, cartPath, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Zero(t, resp.Body.Len())
	assert.Equal(t, 0, h.store.Stats().Items, "cart delete cascades to items")
}

func TestItemLifecycle(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodPost, "/cart", `{"items":[{"title":"Galaxy S7 edge","quantity":"3"}]}`)
	require.Equal(t, http.StatusOK, resp.Code)
	cartTag := resp.Header().Get("ETag")
	doc := decodeCart(t, resp)
	itemPath := doc.Links.Item[0].Href

	resp = h.do(http.MethodGet, itemPath, "")
	require.Equal(t, http.StatusOK, resp.Code)
	itemTag := resp.Header().Get("ETag")

	resp = h.do(http.MethodPatch, itemPath, `{"item":{"quantity":5}}`, "If-Match", itemTag)
	require.Equal(t, http.StatusOK, resp.Code)
	var item hal.ItemDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, "Galaxy S7 edge", item.Title)
	assert.Equal(t, 5, item.Quantity)
	itemTag = resp.Header().Get("ETag")

	resp = h.do(http.MethodGet, doc.Links.Self.Href, "", "If-None-Match", cartTag)
	assert.Equal(t, http.StatusNotModified, resp.Code, "item writes leave the cart tag alone")

	resp = h.do(http.MethodPut, itemPath, `{"item":{"title":"","quantity":"x"}}`, "If-Match", itemTag)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), `'title' must be a non-empty string`)
	assert.Contains(t, resp.Body.String(), `'quantity' must be a positive integer`)

	resp = h.do(http.MethodHead, itemPath, "", "If-None-Match", itemTag)
	assert.Equal(t, http.StatusNotModified, resp.Code)

	resp = h.do(http.MethodDelete, itemPath, "", "If-Match", itemTag)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = h.do(http.MethodGet, doc.Links.Self.Href, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decodeCart(t, resp).ItemCount)
	assert.Equal(t, cartTag, resp.Header().Get("ETag"))
}

func TestCreateRejectsWholeBatch(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodPost, "/cart", `{"items":[{"title":"A","quantity":1},{"title":"","quantity":1}]}`)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, cart.Stats{}, h.store.Stats())
}

func TestQuantityBoundKeepsTotalsPositive(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodPost, "/cart", `{"items":[{"title":"A","quantity":9223372036854775807},{"title":"B","quantity":1}]}`)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	var payload struct {
		Error struct {
			Details []cart.Violation `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, []cart.Violation{{Index: 0, Message: "'quantity' must be a positive integer"}}, payload.Error.Details)
	assert.Equal(t, cart.Stats{}, h.store.Stats())

	resp = h.do(http.MethodPost, "/cart", `{"items":[{"title":"A","quantity":2147483647},{"title":"B","quantity":3.0},{"title":"C","quantity":"1e1"}]}`)
	require.Equal(t, http.StatusOK, resp.Code)
	doc := decodeCart(t, resp)
	assert.Equal(t, 3, doc.ItemCount)
	assert.Equal(t, 2147483660, doc.TotalQuantity)
}

func TestMethodNotAllowedListsAllow(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		method string
		path   string
		allow  string
	}{
		{http.MethodGet, "/cart", "POST, OPTIONS"},
		{http.MethodPatch, "/cart/abc", "GET, HEAD, POST, PUT, DELETE, OPTIONS"},
		{http.MethodPost, "/cart/item/abc", "GET, HEAD, PUT, PATCH, DELETE, OPTIONS"},
		{http.MethodDelete, "/health/live", "GET"},
	}
	for _, tc := range cases {
		resp := h.do(tc.method, tc.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.allow, resp.Header().Get("Allow"), "%s %s", tc.method, tc.path)
		assert.Zero(t, resp.Body.Len())
	}
}

func TestOptionsAdvertisesMethods(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodOptions, "/cart", "")

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "POST, OPTIONS", resp.Header().Get("Allow"))
}

func TestUnknownPathIsEmptyNotFound(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodGet, "/nowhere", "")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Zero(t, resp.Body.Len())
}

func TestCreateIsIdempotentWithKey(t *testing.T) {
	h := newHarness(t)
	body := `{"items":[{"title":"A","quantity":1}]}`

	first := h.do(http.MethodPost, "/cart", body, "Idempotency-Key", "k1")
	second := h.do(http.MethodPost, "/cart", body, "Idempotency-Key", "k1")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Header().Get("ETag"), second.Header().Get("ETag"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, h.store.Stats().Carts)

	reused := h.do(http.MethodPost, "/cart", `{"items":[]}`, "Idempotency-Key", "k1")
	assert.Equal(t, http.StatusConflict, reused.Code)
}

func TestOversizedBodyRejected(t *testing.T) {
	h := newHarness(t)
	big := `{"items":[{"title":"` + strings.Repeat("x", 8192) + `","quantity":1}]}`

	resp := h.do(http.MethodPost, "/cart", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Equal(t, 0, h.store.Stats().Carts)
}

func TestHealthAndMetricsMounted(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health/ready", "").Code)
	h.do(http.MethodGet, "/cart/missing", "")

	resp := h.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `http_requests_total{method="GET",route="/cart/{id}",status="404"} 1`)
	assert.Contains(t, resp.Body.String(), `conditional_request_outcomes_total{operation="get",outcome="not_found",resource="cart"} 1`)
}
