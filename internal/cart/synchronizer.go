package cart

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/cartsync/internal/obs"
	"github.com/noah-isme/cartsync/internal/pricing"
)

// Card is one rendered item. Each getter reports whether the underlying
// element exists so parsing can fall back to defaults.
type Card interface {
	TitleText() (string, bool)
	PriceText() (string, bool)
	QuantityText() (string, bool)
	SetQuantityText(string)
}

// CardList yields the cards currently visible in the listing.
type CardList interface {
	Cards() []Card
}

// TotalDisplay receives the formatted total.
type TotalDisplay interface {
	SetText(string)
}

// Target is the element a click landed on.
type Target interface {
	Classes() []string
	// Card returns the closest enclosing card.
	Card() (Card, bool)
}

// Config wires a Synchronizer to its collaborators.
type Config struct {
	List   CardList
	Total  TotalDisplay
	Store  Store
	Key    string
	Logger *zerolog.Logger
}

// Synchronizer keeps card quantities, the persisted cart and the total in step.
// It is not safe for concurrent use; hosts serialise access per listing.
type Synchronizer struct {
	list   CardList
	total  TotalDisplay
	store  Store
	key    string
	logger zerolog.Logger
	active bool
}

// Outcome describes what a dispatched click did.
type Outcome struct {
	Action   Action
	Title    string
	Quantity int
	Liked    bool
	Total    decimal.Decimal
}

// New builds a synchronizer. Without a card list or a total display it is
// inert: every operation becomes a no-op.
func New(cfg Config) *Synchronizer {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "cart").Logger()
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = DefaultStorageKey
	}
	s := &Synchronizer{
		list:   cfg.List,
		total:  cfg.Total,
		store:  cfg.Store,
		key:    key,
		logger: logger,
		active: cfg.List != nil && cfg.Total != nil,
	}
	if !s.active {
		logger.Debug().Msg("cart container missing, synchronizer inert")
	}
	return s
}

// Active reports whether the required containers were present.
func (s *Synchronizer) Active() bool { return s != nil && s.active }

// Key returns the storage slot the synchronizer persists to.
func (s *Synchronizer) Key() string { return s.key }

// Initialize loads the persisted cart onto the visible cards and renders the total.
func (s *Synchronizer) Initialize(ctx context.Context) {
	if !s.Active() {
		return
	}
	stored := s.load(ctx)
	for _, card := range s.list.Cards() {
		s.setQuantity(card, stored.Quantity(Title(card)))
	}
	s.RecomputeTotal()
}

// ChangeQuantity adds delta to the card's quantity, saturating at 0 and
// MaxQuantity, then persists the card and refreshes the total. It returns
// the new quantity.
func (s *Synchronizer) ChangeQuantity(ctx context.Context, card Card, delta int) int {
	if !s.Active() || card == nil {
		return 0
	}
	next := AddQuantity(Quantity(card), delta)
	s.setQuantity(card, next)
	s.PersistCard(ctx, card)
	s.RecomputeTotal()
	return next
}

// SetQuantityToZero handles the remove action.
func (s *Synchronizer) SetQuantityToZero(ctx context.Context, card Card) {
	if !s.Active() || card == nil {
		return
	}
	s.setQuantity(card, 0)
	s.PersistCard(ctx, card)
	s.RecomputeTotal()
}

// PersistCard re-reads the whole stored cart, applies this card's quantity
// and writes the whole cart back.
func (s *Synchronizer) PersistCard(ctx context.Context, card Card) {
	if !s.Active() || card == nil {
		return
	}
	title := Title(card)
	stored := s.load(ctx)
	stored.Put(title, Quantity(card))
	if err := SaveCart(ctx, s.store, s.key, stored); err != nil {
		s.storeError("write", err)
	}
}

// RecomputeTotal sums unit price times quantity over the visible cards and
// writes the formatted result to the total display.
func (s *Synchronizer) RecomputeTotal() decimal.Decimal {
	if !s.Active() {
		return decimal.Zero
	}
	total := Total(s.list.Cards())
	s.total.SetText(FormatTotal(total))
	return total
}

// Dispatch classifies a click target and runs the matching operation.
// Clicks outside a card or on an unrecognised element are ignored.
func (s *Synchronizer) Dispatch(ctx context.Context, target Target) Outcome {
	if !s.Active() || target == nil {
		return Outcome{Action: ActionNone}
	}
	card, ok := target.Card()
	if !ok || card == nil {
		return Outcome{Action: ActionNone}
	}
	action := Classify(target.Classes())
	out := Outcome{Action: action, Title: Title(card)}
	switch action {
	case ActionIncrement:
		out.Quantity = s.ChangeQuantity(ctx, card, 1)
	case ActionDecrement:
		out.Quantity = s.ChangeQuantity(ctx, card, -1)
	case ActionRemove:
		s.SetQuantityToZero(ctx, card)
	case ActionToggleLike:
		icon, ok := target.(Icon)
		if !ok {
			return Outcome{Action: ActionNone}
		}
		out.Liked = ToggleLike(icon)
		out.Quantity = Quantity(card)
	default:
		return Outcome{Action: ActionNone}
	}
	out.Total = Total(s.list.Cards())
	if obs.CartActionsTotal != nil {
		obs.CartActionsTotal.WithLabelValues(action.String()).Inc()
	}
	s.logger.Debug().Str("action", action.String()).Str("title", out.Title).Int("quantity", out.Quantity).Msg("cart click")
	return out
}

// Snapshot returns the cart as currently persisted.
func (s *Synchronizer) Snapshot(ctx context.Context) Cart {
	return s.load(ctx)
}

func (s *Synchronizer) load(ctx context.Context) Cart {
	stored, err := LoadCart(ctx, s.store, s.key)
	if err != nil {
		s.storeError("read", err)
	}
	return stored
}

func (s *Synchronizer) setQuantity(card Card, qty int) {
	card.SetQuantityText(strconv.Itoa(qty))
}

func (s *Synchronizer) storeError(op string, err error) {
	if obs.CartStoreErrorsTotal != nil {
		obs.CartStoreErrorsTotal.WithLabelValues(op).Inc()
	}
	s.logger.Error().Err(err).Str("op", op).Str("key", s.key).Msg("cart store")
}

// Title returns the identity of a card.
func Title(card Card) string {
	return ParseTitle(card.TitleText()).Value
}

// UnitPrice returns the card's parsed unit price, 0 when unreadable.
func UnitPrice(card Card) decimal.Decimal {
	return ParsePrice(card.PriceText()).Value
}

// Quantity returns the card's displayed quantity, 0 when unreadable.
func Quantity(card Card) int {
	return ParseQuantity(card.QuantityText()).Value
}

// Total sums unit price times quantity over cards.
func Total(cards []Card) decimal.Decimal {
	return Summarize(cards).Total
}

// Summarize prices the cards, reporting the unit count alongside the total.
func Summarize(cards []Card) pricing.Summary {
	items := make([]pricing.Item, 0, len(cards))
	for _, card := range cards {
		items = append(items, pricing.Item{Qty: Quantity(card), UnitPrice: UnitPrice(card)})
	}
	return pricing.Compute(items)
}

// AddQuantity returns current+delta clamped to [0, MaxQuantity]. It never
// overflows, whatever delta is.
func AddQuantity(current, delta int) int {
	current = min(max(current, 0), MaxQuantity)
	switch {
	case delta > MaxQuantity-current:
		return MaxQuantity
	case delta < -current:
		return 0
	}
	return current + delta
}

// FormatTotal renders a total as "<n>.<dd> $".
func FormatTotal(total decimal.Decimal) string {
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.StringFixed(2) + " $"
}
