package dom

import (
	"strings"

	"golang.org/x/net/html"
)

type declaration struct {
	property string
	value    string
}

// StyleProperty returns the inline style value of property on n, or "".
func StyleProperty(n *html.Node, property string) string {
	property = strings.ToLower(strings.TrimSpace(property))
	for _, d := range parseStyle(AttrOr(n, "style", "")) {
		if d.property == property {
			return d.value
		}
	}
	return ""
}

// SetStyleProperty sets an inline style declaration on n. An empty value removes the
// declaration, and the style attribute is dropped once no declarations remain.
func SetStyleProperty(n *html.Node, property, value string) {
	if n == nil {
		return
	}
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)

	decls := parseStyle(AttrOr(n, "style", ""))
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.property != property {
			out = append(out, d)
			continue
		}
		if value != "" && !replaced {
			out = append(out, declaration{property: property, value: value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		out = append(out, declaration{property: property, value: value})
	}

	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, 0, len(out))
	for _, d := range out {
		parts = append(parts, d.property+": "+d.value)
	}
	SetAttr(n, "style", strings.Join(parts, "; ")+";")
}

func parseStyle(raw string) []declaration {
	var out []declaration
	for _, chunk := range strings.Split(raw, ";") {
		prop, val, ok := strings.Cut(chunk, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		out = append(out, declaration{property: prop, value: val})
	}
	return out
}
