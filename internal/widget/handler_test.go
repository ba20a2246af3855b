package widget_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cartsync/internal/cart"
	"github.com/noah-isme/cartsync/internal/http/middleware"
	"github.com/noah-isme/cartsync/internal/listing"
	"github.com/noah-isme/cartsync/internal/lock"
	"github.com/noah-isme/cartsync/internal/store"
	"github.com/noah-isme/cartsync/internal/widget"
)

type clickResponse struct {
	Data struct {
		Action   string         `json:"action"`
		Title    string         `json:"title"`
		Quantity int            `json:"quantity"`
		Liked    bool           `json:"liked"`
		Total    string         `json:"total"`
		Cart     map[string]int `json:"cart"`
	} `json:"data"`
}

type cartResponse struct {
	Data struct {
		Items []widget.Item  `json:"items"`
		Units int            `json:"units"`
		Total string         `json:"total"`
		Cart  map[string]int `json:"cart"`
	} `json:"data"`
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newServer(t *testing.T, backend store.Backend, markup string) http.Handler {
	t.Helper()
	h := &widget.Handler{
		Store:      backend,
		Locker:     &lock.Local{},
		StorageKey: cart.DefaultStorageKey,
		Markup:     markup,
	}
	r := chi.NewRouter()
	r.Use(middleware.Session{}.Middleware)
	h.Register(r)
	return r
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func (c *client) click(body string) clickResponse {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/cart/clicks", body)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp clickResponse
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (c *client) cart() cartResponse {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/api/v1/cart", "")
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp cartResponse
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestExampleScenarioOverHTTP(t *testing.T) {
	c := &client{t: t, handler: newServer(t, store.NewMemory(), listing.DefaultMarkup)}

	c.click(`{"title":"Apple","icon":"increment"}`)
	resp := c.click(`{"title":"Apple","icon":"fa-plus-circle"}`)
	require.Equal(t, "increment", resp.Data.Action)
	require.Equal(t, 2, resp.Data.Quantity)
	require.Equal(t, "3.00 $", resp.Data.Total)
	require.Equal(t, map[string]int{"Apple": 2}, resp.Data.Cart)

	resp = c.click(`{"title":"Banana","icon":"increment"}`)
	require.Equal(t, "3.75 $", resp.Data.Total)
	require.Equal(t, map[string]int{"Apple": 2, "Banana": 1}, resp.Data.Cart)

	resp = c.click(`{"title":"Apple","icon":"remove"}`)
	require.Equal(t, "remove", resp.Data.Action)
	require.Equal(t, 0, resp.Data.Quantity)
	require.Equal(t, "0.75 $", resp.Data.Total)
	require.Equal(t, map[string]int{"Banana": 1}, resp.Data.Cart)
}

func TestCartRestoredOnReload(t *testing.T) {
	c := &client{t: t, handler: newServer(t, store.NewMemory(), listing.DefaultMarkup)}
	c.click(`{"card":2,"icon":"increment"}`)
	c.click(`{"card":1,"icon":"increment"}`)

	got := c.cart()
	require.Equal(t, "100.75 $", got.Data.Total)
	require.Equal(t, 2, got.Data.Units)
	require.Len(t, got.Data.Items, 3)
	require.Equal(t, "Baskets", got.Data.Items[2].Title)
	require.Equal(t, 1, got.Data.Items[2].Quantity)
	require.Equal(t, "100.00", got.Data.Items[2].Subtotal)

	rec := c.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), `<span class="total">100.75 $</span>`)
}

func TestSessionsAreIsolated(t *testing.T) {
	backend := store.NewMemory()
	handler := newServer(t, backend, listing.DefaultMarkup)
	first := &client{t: t, handler: handler}
	second := &client{t: t, handler: handler}

	first.click(`{"title":"Apple","icon":"increment"}`)
	second.cart()

	require.Equal(t, map[string]int{"Apple": 1}, first.cart().Data.Cart)
	require.Empty(t, second.cart().Data.Cart)
	require.NotEqual(t, first.cookies[0].Value, second.cookies[0].Value)
}

func TestDecrementNeverGoesNegative(t *testing.T) {
	c := &client{t: t, handler: newServer(t, store.NewMemory(), listing.DefaultMarkup)}
	resp := c.click(`{"title":"Banana","icon":"decrement"}`)
	require.Equal(t, 0, resp.Data.Quantity)
	require.Equal(t, "0.00 $", resp.Data.Total)
	require.Empty(t, resp.Data.Cart)
}

func TestLikeLeavesCartAlone(t *testing.T) {
	c := &client{t: t, handler: newServer(t, store.NewMemory(), listing.DefaultMarkup)}
	c.click(`{"title":"Apple","icon":"increment"}`)

	resp := c.click(`{"title":"Apple","icon":"like"}`)
	require.Equal(t, "like", resp.Data.Action)
	require.True(t, resp.Data.Liked)
	require.Equal(t, 1, resp.Data.Quantity)
	require.Equal(t, "1.50 $", resp.Data.Total)
	require.Equal(t, map[string]int{"Apple": 1}, resp.Data.Cart)

	resp = c.click(`{"title":"Apple","icon":"fa-heart","liked":true}`)
	require.False(t, resp.Data.Liked)
	require.Equal(t, map[string]int{"Apple": 1}, resp.Data.Cart)
}

func TestUnknownClicksAreIgnored(t *testing.T) {
	c := &client{t: t, handler: newServer(t, store.NewMemory(), listing.DefaultMarkup)}

	resp := c.click(`{"title":"Cherry","icon":"increment"}`)
	require.Equal(t, "none", resp.Data.Action)

	resp = c.click(`{"card":9,"icon":"increment"}`)
	require.Equal(t, "none", resp.Data.Action)

	resp = c.click(`{"title":"Apple","icon":"fa-star"}`)
	require.Equal(t, "none", resp.Data.Action)
	require.Equal(t, "0.00 $", resp.Data.Total)
	require.Empty(t, resp.Data.Cart)
}

func TestClickValidation(t *testing.T) {
	c := &client{t: t, handler: newServer(t, store.NewMemory(), listing.DefaultMarkup)}

	rec := c.do(http.MethodPost, "/api/v1/cart/clicks", `{"title":"Apple"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	require.Contains(t, rec.Body.String(), `"icon":"required"`)

	rec = c.do(http.MethodPost, "/api/v1/cart/clicks", `{"icon":"increment"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/cart/clicks", `{"card":-1,"icon":"increment"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/cart/clicks", `{"title":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/cart/clicks", `{"title":"Apple","icon":"increment","qty":4}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearEmptiesCart(t *testing.T) {
	c := &client{t: t, handler: newServer(t, store.NewMemory(), listing.DefaultMarkup)}
	c.click(`{"title":"Apple","icon":"increment"}`)

	rec := c.do(http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	got := c.cart()
	require.Empty(t, got.Data.Cart)
	require.Equal(t, "0.00 $", got.Data.Total)
}

func TestMarkupWithoutContainersIsInert(t *testing.T) {
	markup := `<div class="card"><h5 class="card-title">Apple</h5><i class="fa-plus-circle"></i></div>`
	c := &client{t: t, handler: newServer(t, store.NewMemory(), markup)}

	resp := c.click(`{"title":"Apple","icon":"increment"}`)
	require.Equal(t, "none", resp.Data.Action)
	require.Equal(t, "0.00 $", resp.Data.Total)
	require.Empty(t, resp.Data.Cart)
}

type failingBackend struct{ store.Backend }

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store down")
}

func (failingBackend) Set(context.Context, string, string) error { return errors.New("store down") }

func TestStoreFailuresDoNotBreakClicks(t *testing.T) {
	c := &client{t: t, handler: newServer(t, failingBackend{Backend: store.NewMemory()}, listing.DefaultMarkup)}
	resp := c.click(`{"title":"Apple","icon":"increment"}`)
	require.Equal(t, "increment", resp.Data.Action)
	require.Equal(t, 1, resp.Data.Quantity)
	require.Equal(t, "1.50 $", resp.Data.Total)
	require.Empty(t, resp.Data.Cart)
}

func TestMissingSessionIsRejected(t *testing.T) {
	backend := store.NewMemory()
	r := chi.NewRouter()
	(&widget.Handler{Store: backend, Markup: listing.DefaultMarkup}).Register(r)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/cart/clicks", strings.NewReader(`{"title":"Apple","icon":"increment"}`)),
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, req.Method+" "+req.URL.Path)
		require.Contains(t, rec.Body.String(), "SESSION_REQUIRED")
	}
	_, ok, err := backend.Get(context.Background(), cart.DefaultStorageKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMissingStoreIsInternalError(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Session{}.Middleware)
	(&widget.Handler{Markup: listing.DefaultMarkup}).Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
