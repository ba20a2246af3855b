package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// DefaultStorageKey is the slot the cart mapping lives in.
const DefaultStorageKey = "shopping_cart"

// MaxQuantity caps every quantity the cart displays or persists.
const MaxQuantity = math.MaxInt32

// Store is the persisted key-value slot holding the encoded cart.
type Store interface {
	// Get returns the raw value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Cart maps an item title to a positive quantity.
type Cart map[string]int

// Put sets the quantity for title, removing the entry when qty is not
// positive and capping it at MaxQuantity.
func (c Cart) Put(title string, qty int) {
	if qty > 0 {
		c[title] = min(qty, MaxQuantity)
		return
	}
	delete(c, title)
}

// Quantity returns the stored quantity for title, 0 when absent.
func (c Cart) Quantity(title string) int {
	return c[title]
}

// DecodeCart parses a persisted cart. The payload must be a JSON object;
// entries whose value is not a positive whole number are dropped. Anything
// unreadable yields an empty cart and ok=false.
func DecodeCart(raw string) (Cart, bool) {
	out := Cart{}
	if raw == "" {
		return out, false
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil || values == nil {
		return out, false
	}
	for title, value := range values {
		var num json.Number
		if err := json.Unmarshal(value, &num); err != nil {
			continue
		}
		f, err := num.Float64()
		if err != nil || f <= 0 || f != math.Trunc(f) || f > MaxQuantity {
			continue
		}
		out[title] = int(f)
	}
	return out, true
}

// EncodeCart serialises the cart as a JSON object with positive quantities
// only, each capped at MaxQuantity.
func EncodeCart(c Cart) (string, error) {
	clean := make(map[string]int, len(c))
	for title, qty := range c {
		if qty > 0 {
			clean[title] = min(qty, MaxQuantity)
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(data), nil
}

// LoadCart reads and decodes the cart stored under key. Missing, malformed
// or unreadable data yields an empty cart; the error only reports a store
// failure so callers can log it.
func LoadCart(ctx context.Context, store Store, key string) (Cart, error) {
	if store == nil {
		return Cart{}, nil
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return Cart{}, fmt.Errorf("read cart: %w", err)
	}
	if !ok {
		return Cart{}, nil
	}
	c, _ := DecodeCart(raw)
	return c, nil
}

// SaveCart encodes c and writes it under key.
func SaveCart(ctx context.Context, store Store, key string, c Cart) error {
	if store == nil {
		return nil
	}
	payload, err := EncodeCart(c)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}
