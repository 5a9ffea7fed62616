package model

import (
	"fmt"
	"strings"
)

type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByName     SortKey = "name"
	SortByLocation SortKey = "location"
	SortByPrice    SortKey = "price"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortByDate, SortByName, SortByLocation, SortByPrice:
		return true
	}
	return false
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

func (d SortDirection) IsValid() bool {
	return d == Ascending || d == Descending
}

func (d SortDirection) Reverse() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

type Sort struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort is date ascending.
var DefaultSort = Sort{Key: SortByDate, Direction: Ascending}

// OrDefault replaces an invalid key or direction with the default.
func (s Sort) OrDefault() Sort {
	if !s.Key.IsValid() {
		s.Key = DefaultSort.Key
	}
	if !s.Direction.IsValid() {
		s.Direction = DefaultSort.Direction
	}
	return s
}

func (s Sort) String() string {
	return fmt.Sprintf("%s:%s", s.Key, s.Direction)
}

// ParseSort accepts "key" or "key:dir", e.g. "price:desc".
func ParseSort(s string) (Sort, error) {
	key, dir, found := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	out := Sort{Key: SortKey(key), Direction: Ascending}
	if found {
		out.Direction = SortDirection(dir)
	}
	if !out.Key.IsValid() || !out.Direction.IsValid() {
		return DefaultSort, fmt.Errorf("invalid sort %q", s)
	}
	return out, nil
}
