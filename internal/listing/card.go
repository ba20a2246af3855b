package listing

import (
	"github.com/noah-isme/cartsync/internal/cart"
	"github.com/noah-isme/cartsync/internal/dom"
)

// Card is a card element of the listing.
type Card struct {
	el *dom.Element
}

// Element returns the card element.
func (c Card) Element() *dom.Element { return c.el }

// TitleText returns the raw title text.
func (c Card) TitleText() (string, bool) { return c.text(ClassTitle) }

// PriceText returns the raw unit price text.
func (c Card) PriceText() (string, bool) { return c.text(ClassPrice) }

// QuantityText returns the raw quantity text.
func (c Card) QuantityText() (string, bool) { return c.text(ClassQuantity) }

// SetQuantityText overwrites the quantity element, if the card has one.
func (c Card) SetQuantityText(text string) {
	if el, ok := c.el.Query(ClassQuantity); ok {
		el.SetText(text)
	}
}

// Liked reports whether the card's like icon is toggled on.
func (c Card) Liked() bool {
	icon, ok := c.el.Query(cart.ClassLike)
	return ok && icon.HasClass(cart.ClassLiked)
}

func (c Card) text(class string) (string, bool) {
	if c.el == nil {
		return "", false
	}
	el, ok := c.el.Query(class)
	if !ok {
		return "", false
	}
	return el.Text(), true
}

// Target is an element a click landed on.
type Target struct {
	el   *dom.Element
	list *dom.Element
}

// NewTarget wraps an element of the page as a click target.
func (p *Page) NewTarget(el *dom.Element) *Target {
	return &Target{el: el, list: p.list}
}

// Classes returns the element's class list.
func (t *Target) Classes() []string { return t.el.Classes() }

// Card resolves the enclosing card. Cards outside the list container do not
// count, since only clicks inside the list are listened to.
func (t *Target) Card() (cart.Card, bool) {
	if t.list == nil || !t.list.Contains(t.el) {
		return nil, false
	}
	el, ok := t.el.Closest(ClassCard)
	if !ok || !t.list.Contains(el) {
		return nil, false
	}
	return Card{el: el}, true
}

// HasClass implements cart.Icon.
func (t *Target) HasClass(class string) bool { return t.el.HasClass(class) }

// AddClass implements cart.Icon.
func (t *Target) AddClass(class string) { t.el.AddClass(class) }

// RemoveClass implements cart.Icon.
func (t *Target) RemoveClass(class string) { t.el.RemoveClass(class) }

// SetStyle implements cart.Icon.
func (t *Target) SetStyle(prop, value string) { t.el.SetStyle(prop, value) }
