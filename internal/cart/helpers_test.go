package cart_test

import (
	"context"
	"errors"
	"slices"

	"github.com/noah-isme/cartsync/internal/cart"
)

type fakeCard struct {
	title    *string
	price    *string
	quantity *string
}

func str(s string) *string { return &s }

func newCard(title, price string) *fakeCard {
	return &fakeCard{title: str(title), price: str(price), quantity: str("")}
}

func (c *fakeCard) TitleText() (string, bool)    { return deref(c.title) }
func (c *fakeCard) PriceText() (string, bool)    { return deref(c.price) }
func (c *fakeCard) QuantityText() (string, bool) { return deref(c.quantity) }
func (c *fakeCard) SetQuantityText(v string) {
	if c.quantity != nil {
		*c.quantity = v
	}
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

type fakeList []*fakeCard

func (l fakeList) Cards() []cart.Card {
	out := make([]cart.Card, 0, len(l))
	for _, c := range l {
		out = append(out, c)
	}
	return out
}

type fakeTotal struct{ text string }

func (t *fakeTotal) SetText(v string) { t.text = v }

type fakeIcon struct {
	classes []string
	style   map[string]string
	card    cart.Card
}

func newIcon(card cart.Card, classes ...string) *fakeIcon {
	return &fakeIcon{classes: classes, style: map[string]string{}, card: card}
}

func (i *fakeIcon) Classes() []string { return i.classes }
func (i *fakeIcon) Card() (cart.Card, bool) {
	return i.card, i.card != nil
}
func (i *fakeIcon) HasClass(c string) bool { return slices.Contains(i.classes, c) }
func (i *fakeIcon) AddClass(c string) {
	if !i.HasClass(c) {
		i.classes = append(i.classes, c)
	}
}
func (i *fakeIcon) RemoveClass(c string) {
	i.classes = slices.DeleteFunc(i.classes, func(v string) bool { return v == c })
}
func (i *fakeIcon) SetStyle(prop, value string) {
	if value == "" {
		delete(i.style, prop)
		return
	}
	i.style[prop] = value
}

// memStore is a map-backed cart.Store that records writes.
type memStore struct {
	values map[string]string
	writes int
	getErr error
	setErr error
}

func newMemStore() *memStore { return &memStore{values: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.writes++
	m.values[key] = value
	return nil
}

var errStoreDown = errors.New("store down")
