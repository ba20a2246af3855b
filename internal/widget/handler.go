// Package widget serves the product listing and applies cart clicks for a
// browser session.
package widget

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/cartsync/internal/cart"
	"github.com/noah-isme/cartsync/internal/common"
	"github.com/noah-isme/cartsync/internal/listing"
	"github.com/noah-isme/cartsync/internal/lock"
	"github.com/noah-isme/cartsync/internal/store"
)

// Handler wires the cart synchronizer to HTTP. Every request works on a
// fresh copy of the listing, initialised from the session's persisted cart.
type Handler struct {
	Store      store.Backend
	Locker     lock.Locker
	LockTTL    time.Duration
	StorageKey string
	Markup     string
	Logger     *zerolog.Logger
}

// Item is one card as reported by the API.
type Item struct {
	Title     string `json:"title"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	Liked     bool   `json:"liked"`
}

// session is one request's view of a listing bound to a session's cart.
type session struct {
	id    string
	page  *listing.Page
	sync  *cart.Synchronizer
	store store.Scoped
}

// Page renders the listing with quantities and total restored.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	err := h.withSession(r, func(ctx context.Context, s *session) error {
		s.sync.Initialize(ctx)
		return s.page.Render(&body)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}

// Get returns the cards, the unit count, the total and the persisted cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	var resp map[string]any
	err := h.withSession(r, func(ctx context.Context, s *session) error {
		s.sync.Initialize(ctx)
		resp = map[string]any{
			"items": items(s.page),
			"units": cart.Summarize(s.page.Cards()).Units,
			"total": s.totalText(),
			"cart":  s.sync.Snapshot(ctx),
		}
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, resp)
}

// Click applies one click on a card icon.
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	req, err := decodeClick(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var resp map[string]any
	err = h.withSession(r, func(ctx context.Context, s *session) error {
		s.sync.Initialize(ctx)
		out := cart.Outcome{Action: cart.ActionNone}
		if card, ok := s.resolveCard(req); ok {
			target := s.page.Target(card, req.IconClass())
			if target.HasClass(cart.ClassLike) {
				cart.SetLiked(target, req.Liked)
			}
			out = s.sync.Dispatch(ctx, target)
		}
		resp = map[string]any{
			"action":   out.Action.String(),
			"title":    out.Title,
			"quantity": out.Quantity,
			"liked":    out.Liked,
			"total":    s.totalText(),
			"cart":     s.sync.Snapshot(ctx),
		}
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, resp)
}

// Clear empties the session's persisted cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	err := h.withSession(r, func(ctx context.Context, s *session) error {
		return s.store.Delete(ctx, s.sync.Key())
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) withSession(r *http.Request, fn func(context.Context, *session) error) error {
	if h.Store == nil {
		return common.NewAppError("INTERNAL", "cart store not configured", http.StatusInternalServerError, store.ErrNotConfigured)
	}
	id, _ := common.SessionID(r.Context())
	page, err := listing.ParseString(h.Markup)
	if err != nil {
		return common.NewAppError("INTERNAL", "listing unavailable", http.StatusInternalServerError, err)
	}
	scoped := store.Scoped{Backend: h.Store, Prefix: id}
	cfg := page.Bind(cart.Config{Store: scoped, Key: h.StorageKey, Logger: h.logger(id)})
	s := &session{id: id, page: page, sync: cart.New(cfg), store: scoped}

	if h.Locker == nil {
		return fn(r.Context(), s)
	}
	return h.Locker.WithLock(r.Context(), scoped.Key(s.sync.Key()), h.LockTTL, func(ctx context.Context) error {
		return fn(ctx, s)
	})
}

func (h *Handler) logger(sessionID string) *zerolog.Logger {
	if h.Logger == nil {
		return nil
	}
	l := h.Logger.With().Str("session_id", sessionID).Logger()
	return &l
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus >= http.StatusInternalServerError {
		if h.Logger != nil {
			id, _ := common.SessionID(r.Context())
			h.Logger.Error().Err(err).Str("session_id", id).Str("path", r.URL.Path).Msg("cart request failed")
		}
	}
	common.WriteError(w, err)
}

func (s *session) resolveCard(req ClickRequest) (listing.Card, bool) {
	if req.Card != nil {
		return s.page.CardAt(*req.Card)
	}
	return s.page.CardByTitle(req.Title)
}

func (s *session) totalText() string {
	if !s.sync.Active() {
		return cart.FormatTotal(decimal.Zero)
	}
	return strings.TrimSpace(s.page.TotalText())
}

func items(page *listing.Page) []Item {
	cards := page.Cards()
	out := make([]Item, 0, len(cards))
	for i := range cards {
		card, _ := page.CardAt(i)
		price := cart.UnitPrice(card)
		qty := cart.Quantity(card)
		out = append(out, Item{
			Title:     cart.Title(card),
			UnitPrice: price.StringFixed(2),
			Quantity:  qty,
			Subtotal:  price.Mul(decimal.NewFromInt(int64(qty))).StringFixed(2),
			Liked:     card.Liked(),
		})
	}
	return out
}
