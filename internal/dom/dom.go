// Package dom is a small element model over golang.org/x/net/html, covering
// the class, text and inline style operations the cart listing needs.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// QueryAll returns every element carrying class, in document order.
func (d *Document) QueryAll(class string) []*Element {
	return queryAll(d.root, class)
}

// Query returns the first element carrying class.
func (d *Document) Query(class string) (*Element, bool) {
	return query(d.root, class)
}

// Element is one element node.
type Element struct {
	node *html.Node
}

// Wrap returns the element for n, or nil when n is not an element.
func Wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Element{node: n}
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Tag returns the element name.
func (e *Element) Tag() string { return e.node.Data }

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, adding it when missing.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	return hasClass(e.node, class)
}

// AddClass appends class unless already present.
func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), class), " "))
}

// RemoveClass drops every occurrence of class.
func (e *Element) RemoveClass(class string) {
	classes := e.Classes()
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// Text returns the concatenated text of the element's descendants.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Parent returns the enclosing element.
func (e *Element) Parent() (*Element, bool) {
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return &Element{node: p}, true
		}
	}
	return nil, false
}

// Closest returns the element itself or its nearest ancestor carrying class.
func (e *Element) Closest(class string) (*Element, bool) {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasClass(n, class) {
			return &Element{node: n}, true
		}
	}
	return nil, false
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// QueryAll returns descendants carrying class, in document order.
func (e *Element) QueryAll(class string) []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, queryAll(c, class)...)
	}
	return out
}

// Query returns the first descendant carrying class.
func (e *Element) Query(class string) (*Element, bool) {
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if el, ok := query(c, class); ok {
			return el, true
		}
	}
	return nil, false
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func queryAll(n *html.Node, class string) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, class) {
			out = append(out, &Element{node: n})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func query(n *html.Node, class string) (*Element, bool) {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return &Element{node: n}, true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if el, ok := query(c, class); ok {
			return el, true
		}
	}
	return nil, false
}
