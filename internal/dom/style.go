package dom

import "strings"

type declaration struct {
	prop  string
	value string
}

func parseStyle(raw string) []declaration {
	var out []declaration
	for _, part := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		out = append(out, declaration{prop: prop, value: value})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// Style returns the inline value of a style property.
func (e *Element) Style(prop string) string {
	raw, _ := e.Attr("style")
	prop = strings.ToLower(strings.TrimSpace(prop))
	for _, d := range parseStyle(raw) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// SetStyle sets an inline style property. An empty value removes it, and the
// style attribute itself disappears once no declarations remain.
func (e *Element) SetStyle(prop, value string) {
	raw, _ := e.Attr("style")
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.TrimSpace(value)
	decls := parseStyle(raw)
	kept := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.prop != prop {
			kept = append(kept, d)
			continue
		}
		if value != "" && !replaced {
			kept = append(kept, declaration{prop: prop, value: value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		kept = append(kept, declaration{prop: prop, value: value})
	}
	if len(kept) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", formatStyle(kept))
}
