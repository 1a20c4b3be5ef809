package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// rawItem is the object form an item may take in generated output.
type rawItem struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	Popular     bool    `json:"popular"`
	Recommended bool    `json:"recommended"`
	Spicy       bool    `json:"spicy"`
}

// Normalize parses a JSON object in any of the menu shapes seen in practice
// and returns the canonical flat Menu:
//
//	{"Item": "description"}                          flat
//	{"Category": [{"name": "Item", ...}, ...]}       categorized
//	{"Item": {"description": "...", "spicy": true}}  item objects
//	{"Category": {"Item": "description"}}            nested flat
//
// Category names become item attributes. Values that are not text or
// objects (prices, nulls) are ignored.
func Normalize(raw []byte) (Menu, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("menu is not a JSON object: %w", err)
	}

	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	menu := Menu{}
	for _, key := range keys {
		value := top[key]
		switch firstByte(value) {
		case '"':
			var desc string
			if err := json.Unmarshal(value, &desc); err == nil {
				menu.Add(MenuItem{Name: key, Description: desc})
			}
		case '[':
			addCategoryArray(menu, key, value)
		case '{':
			addObject(menu, key, value)
		}
	}
	return menu, nil
}

func addCategoryArray(menu Menu, category string, value json.RawMessage) {
	var elems []json.RawMessage
	if err := json.Unmarshal(value, &elems); err != nil {
		return
	}
	for _, elem := range elems {
		switch firstByte(elem) {
		case '"':
			var name string
			if json.Unmarshal(elem, &name) == nil {
				menu.Add(MenuItem{Name: name, ItemAttributes: ItemAttributes{Category: category}})
			}
		case '{':
			var it rawItem
			if json.Unmarshal(elem, &it) == nil && it.Name != "" {
				menu.Add(it.toItem(it.Name, category))
			}
		}
	}
}

func addObject(menu Menu, key string, value json.RawMessage) {
	var it rawItem
	if err := json.Unmarshal(value, &it); err == nil && it.Description != nil {
		name := it.Name
		if name == "" {
			name = key
		}
		menu.Add(it.toItem(name, ""))
		return
	}

	var nested map[string]string
	if err := json.Unmarshal(value, &nested); err != nil {
		return
	}
	names := make([]string, 0, len(nested))
	for n := range nested {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		menu.Add(MenuItem{Name: n, Description: nested[n], ItemAttributes: ItemAttributes{Category: key}})
	}
}

func (it rawItem) toItem(name, category string) MenuItem {
	item := MenuItem{
		Name: name,
		ItemAttributes: ItemAttributes{
			Category:    category,
			Popular:     it.Popular,
			Recommended: it.Recommended,
			Spicy:       it.Spicy,
		},
	}
	if it.Description != nil {
		item.Description = *it.Description
	}
	// Only an explicit false is worth recording; true is the default.
	if it.Available != nil && !*it.Available {
		item.Available = it.Available
	}
	return item
}

func firstByte(raw json.RawMessage) byte {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0
	}
	return s[0]
}
