package models

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityRestriction scopes the rows a dropdown may offer
type EntityRestriction int

const (
	// NoEntityRestriction displays every row
	NoEntityRestriction EntityRestriction = iota
	// CurrentEntity displays rows of the session's active entity
	CurrentEntity
	// SubEntities displays rows of the active entity and its descendants
	SubEntities
)

func (r EntityRestriction) String() string {
	switch r {
	case NoEntityRestriction:
		return "none"
	case CurrentEntity:
		return "current"
	case SubEntities:
		return "sub"
	default:
		return "unknown"
	}
}

// ParseEntityRestriction parses "none", "current" or "sub"
func ParseEntityRestriction(s string) (EntityRestriction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoEntityRestriction, nil
	case "current":
		return CurrentEntity, nil
	case "sub", "sub-entities", "recursive":
		return SubEntities, nil
	default:
		return NoEntityRestriction, fmt.Errorf("unknown entity restriction: %s", s)
	}
}

// EntityScope is an entity restriction resolved to concrete entity ids
type EntityScope struct {
	Restricted bool
	IDs        []int64
}

// Unrestricted returns a scope that lets every entity through
func Unrestricted() EntityScope {
	return EntityScope{}
}

// EntityIDs returns a scope limited to the given entities
func EntityIDs(ids ...int64) EntityScope {
	return EntityScope{Restricted: true, IDs: append([]int64(nil), ids...)}
}

// String renders the scope the way the host logs it: -1 when unrestricted
func (s EntityScope) String() string {
	if !s.Restricted {
		return "-1"
	}
	return JoinIDs(s.IDs)
}

// Value is a criteria selection: a single id or a list of ids.
// The zero Value is the scalar 0, meaning "nothing selected".
type Value struct {
	ids  []int64
	list bool
}

// ScalarValue returns a single-id value
func ScalarValue(id int64) Value {
	return Value{ids: []int64{id}}
}

// ListValue returns a multi-select value
func ListValue(ids ...int64) Value {
	return Value{ids: append([]int64{}, ids...), list: true}
}

// IsList reports whether the value came from a multi-select
func (v Value) IsList() bool {
	return v.list
}

// Int returns the scalar id, 0 for lists
func (v Value) Int() int64 {
	if v.list || len(v.ids) == 0 {
		return 0
	}
	return v.ids[0]
}

// IDs returns the selected ids. A zero scalar yields an empty slice.
func (v Value) IDs() []int64 {
	if v.list {
		return append([]int64{}, v.ids...)
	}
	if id := v.Int(); id != 0 {
		return []int64{id}
	}
	return []int64{}
}

// IsSet reports whether something is selected
func (v Value) IsSet() bool {
	if v.list {
		return len(v.ids) > 0
	}
	return v.Int() != 0
}

func (v Value) String() string {
	if v.list {
		return JoinIDs(v.ids)
	}
	return strconv.FormatInt(v.Int(), 10)
}

// JoinIDs formats ids as a comma separated list
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// DropdownOptions are handed to a dropdown renderer
type DropdownOptions struct {
	Name      string
	Value     Value
	Used      []int64
	Comments  bool
	Entity    EntityScope
	Condition []string
	Multiple  bool
	Width     string
}
