package valueobjects

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownAccessory = errors.New("unknown accessory")

// Accessories is the fixed vocabulary a user picks from, in display order.
var Accessories = []string{
	"Rings",
	"Bags",
	"Earrings",
	"Necklaces",
	"Scarves",
	"Bracelets",
	"Watches",
	"Shoes",
}

// CanonicalAccessory maps a case-insensitive label onto the vocabulary.
func CanonicalAccessory(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	for _, a := range Accessories {
		if strings.EqualFold(a, trimmed) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccessory, label)
}

// AccessorySelection is an order-irrelevant set of vocabulary labels.
// The zero value is an empty selection.
type AccessorySelection struct {
	labels map[string]struct{}
}

func NewAccessorySelection(labels ...string) (AccessorySelection, error) {
	var s AccessorySelection
	for _, l := range labels {
		canonical, err := CanonicalAccessory(l)
		if err != nil {
			return AccessorySelection{}, err
		}
		s = s.with(canonical)
	}
	return s, nil
}

// Toggle returns a new selection with label added if absent or removed if present.
func (s AccessorySelection) Toggle(label string) (AccessorySelection, error) {
	canonical, err := CanonicalAccessory(label)
	if err != nil {
		return s, err
	}
	if s.Contains(canonical) {
		return s.without(canonical), nil
	}
	return s.with(canonical), nil
}

func (s AccessorySelection) Contains(label string) bool {
	_, ok := s.labels[label]
	return ok
}

func (s AccessorySelection) Len() int {
	return len(s.labels)
}

func (s AccessorySelection) IsEmpty() bool {
	return len(s.labels) == 0
}

// Labels returns the selected labels in vocabulary order.
func (s AccessorySelection) Labels() []string {
	out := make([]string, 0, len(s.labels))
	for _, a := range Accessories {
		if s.Contains(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s AccessorySelection) Equal(other AccessorySelection) bool {
	return slices.Equal(s.Labels(), other.Labels())
}

func (s AccessorySelection) with(label string) AccessorySelection {
	next := make(map[string]struct{}, len(s.labels)+1)
	for l := range s.labels {
		next[l] = struct{}{}
	}
	next[label] = struct{}{}
	return AccessorySelection{labels: next}
}

func (s AccessorySelection) without(label string) AccessorySelection {
	next := make(map[string]struct{}, len(s.labels))
	for l := range s.labels {
		if l != label {
			next[l] = struct{}{}
		}
	}
	return AccessorySelection{labels: next}
}
