// Package listing binds the cart synchronizer to a product listing document.
package listing

import (
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/noah-isme/cartsync/internal/cart"
	"github.com/noah-isme/cartsync/internal/dom"
)

// Selector classes used by the listing markup.
const (
	ClassList     = "list-products"
	ClassTotal    = "total"
	ClassCard     = "card"
	ClassTitle    = "card-title"
	ClassPrice    = "unit-price"
	ClassQuantity = "quantity"
)

// DefaultMarkup is the listing served when no listing file is configured.
//
//go:embed assets/listing.html
var DefaultMarkup string

// Page is one rendered copy of the listing.
type Page struct {
	doc   *dom.Document
	list  *dom.Element
	total *dom.Element
}

// Parse builds a page from listing markup.
func Parse(r io.Reader) (*Page, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(doc), nil
}

// ParseString builds a page from in-memory markup.
func ParseString(markup string) (*Page, error) {
	return Parse(strings.NewReader(markup))
}

// LoadMarkup reads listing markup from path, or returns DefaultMarkup when
// path is empty.
func LoadMarkup(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultMarkup, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New wraps a parsed document.
func New(doc *dom.Document) *Page {
	p := &Page{doc: doc}
	if el, ok := doc.Query(ClassList); ok {
		p.list = el
	}
	if el, ok := doc.Query(ClassTotal); ok {
		p.total = el
	}
	return p
}

// Document returns the underlying document.
func (p *Page) Document() *dom.Document { return p.doc }

// Bind fills the list and total collaborators of cfg. They stay nil when the
// markup lacks the containers, which leaves the synchronizer inert.
func (p *Page) Bind(cfg cart.Config) cart.Config {
	cfg.List, cfg.Total = nil, nil
	if p.list != nil && p.total != nil {
		cfg.List = p
		cfg.Total = totalDisplay{el: p.total}
	}
	return cfg
}

// Cards returns the cards inside the list container.
func (p *Page) Cards() []cart.Card {
	cards := p.cardElements()
	out := make([]cart.Card, 0, len(cards))
	for _, el := range cards {
		out = append(out, Card{el: el})
	}
	return out
}

// CardAt returns the i-th card of the listing.
func (p *Page) CardAt(i int) (Card, bool) {
	cards := p.cardElements()
	if i < 0 || i >= len(cards) {
		return Card{}, false
	}
	return Card{el: cards[i]}, true
}

// CardByTitle returns the first card whose trimmed title equals title.
func (p *Page) CardByTitle(title string) (Card, bool) {
	title = strings.TrimSpace(title)
	for _, el := range p.cardElements() {
		c := Card{el: el}
		if cart.Title(c) == title {
			return c, true
		}
	}
	return Card{}, false
}

// TotalText returns the text currently shown in the total element.
func (p *Page) TotalText() string {
	if p.total == nil {
		return ""
	}
	return p.total.Text()
}

// Target returns the first element inside card carrying iconClass as a
// click target. When the card has no such icon, the card itself is the
// target, which classifies as no action.
func (p *Page) Target(card Card, iconClass string) *Target {
	if card.el == nil {
		return nil
	}
	if iconClass != "" {
		if el, ok := card.el.Query(iconClass); ok {
			return &Target{el: el, list: p.list}
		}
	}
	return &Target{el: card.el, list: p.list}
}

// Render writes the page out as HTML.
func (p *Page) Render(w io.Writer) error {
	return p.doc.Render(w)
}

func (p *Page) cardElements() []*dom.Element {
	if p.list == nil {
		return nil
	}
	return p.list.QueryAll(ClassCard)
}

type totalDisplay struct {
	el *dom.Element
}

func (t totalDisplay) SetText(text string) { t.el.SetText(text) }
