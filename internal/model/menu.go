package model

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxDescriptionLen bounds item descriptions, in runes.
const MaxDescriptionLen = 240

// ItemAttributes holds the optional per-item flags carried alongside the
// flat name→description menu. The zero value means: available, no category,
// no flags.
type ItemAttributes struct {
	Category    string `json:"category,omitempty"`
	Available   *bool  `json:"available,omitempty"`
	Popular     bool   `json:"popular,omitempty"`
	Recommended bool   `json:"recommended,omitempty"`
	Spicy       bool   `json:"spicy,omitempty"`
}

// IsZero reports whether the attributes are all defaults.
func (a ItemAttributes) IsZero() bool {
	return a.Category == "" && a.Available == nil && !a.Popular && !a.Recommended && !a.Spicy
}

// MenuItem is one entry of a menu.
type MenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ItemAttributes
}

// IsAvailable defaults to true when availability was never set.
func (i MenuItem) IsAvailable() bool {
	return i.Available == nil || *i.Available
}

// Menu maps item name to item. Names are unique under NormalizeName.
type Menu map[string]MenuItem

// NormalizeName folds case and whitespace so that "Pad Thai" and " pad  thai"
// compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Add inserts item, replacing any existing entry whose name normalizes to
// the same key. Items with a blank name are ignored.
func (m Menu) Add(item MenuItem) {
	item.Name = strings.Join(strings.Fields(item.Name), " ")
	if item.Name == "" {
		return
	}
	item.Description = truncateRunes(strings.TrimSpace(item.Description), MaxDescriptionLen)

	key := NormalizeName(item.Name)
	for existing := range m {
		if existing != item.Name && NormalizeName(existing) == key {
			delete(m, existing)
		}
	}
	m[item.Name] = item
}

// Set is a shorthand for Add with a bare description.
func (m Menu) Set(name, description string) {
	m.Add(MenuItem{Name: name, Description: description})
}

// Clone returns a deep copy.
func (m Menu) Clone() Menu {
	if m == nil {
		return nil
	}
	out := make(Menu, len(m))
	for k, v := range m {
		if v.Available != nil {
			avail := *v.Available
			v.Available = &avail
		}
		out[k] = v
	}
	return out
}

// Merge returns the union of m and other. Entries of other win on conflict,
// including conflicts that differ only in case or whitespace.
func (m Menu) Merge(other Menu) Menu {
	out := m.Clone()
	if out == nil {
		out = Menu{}
	}
	for _, name := range other.Names() {
		out.Add(other[name])
	}
	return out
}

// Names returns item names in sorted order.
func (m Menu) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns the items sorted by category, then name.
func (m Menu) Items() []MenuItem {
	items := make([]MenuItem, 0, len(m))
	for _, item := range m {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// Descriptions returns the flat name→description view.
func (m Menu) Descriptions() map[string]string {
	out := make(map[string]string, len(m))
	for name, item := range m {
		out[name] = item.Description
	}
	return out
}

// Attributes returns the parallel attribute view, holding only items with
// non-default attributes. It is nil when every item is default.
func (m Menu) Attributes() map[string]ItemAttributes {
	var out map[string]ItemAttributes
	for name, item := range m {
		if item.ItemAttributes.IsZero() {
			continue
		}
		if out == nil {
			out = make(map[string]ItemAttributes)
		}
		out[name] = item.ItemAttributes
	}
	return out
}

// MenuFromParts rebuilds a Menu from its flat and attribute views.
func MenuFromParts(descriptions map[string]string, attrs map[string]ItemAttributes) Menu {
	m := make(Menu, len(descriptions))
	names := make([]string, 0, len(descriptions))
	for name := range descriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.Add(MenuItem{Name: name, Description: descriptions[name], ItemAttributes: attrs[name]})
	}
	return m
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
