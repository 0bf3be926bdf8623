package domain

import (
	"encoding/json"
	"time"
)

// ValueKind identifies the type stored in a metadata Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindStringList
	KindTime
)

// Value is a metadata field value restricted to a closed set of kinds.
// Keeping the set small lets stores translate filters without reflection
// and keeps filter comparisons well-defined per kind.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	list []string
	ts   time.Time
}

// String builds a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number builds a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// StringList builds a list-of-strings value.
func StringList(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindStringList, list: list}
}

// Time builds a timestamp value.
func Time(t time.Time) Value {
	return Value{kind: KindTime, ts: t}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out, true
}

func (v Value) AsTime() (time.Time, bool) {
	return v.ts, v.kind == KindTime
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindTime:
		return v.ts.Equal(other.ts)
	case KindStringList:
		if len(v.list) != other.listLen() {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) listLen() int { return len(v.list) }

// matches applies filter semantics: exact match for scalars, membership
// when either side is a list.
//   - filter string vs chunk string: equality
//   - filter string vs chunk list: chunk list contains the filter value
//   - filter list vs chunk string: chunk value is one of the filter values
//   - filter list vs chunk list: every filter value appears in the chunk list
func (v Value) matches(filter Value) bool {
	switch filter.kind {
	case KindString:
		if v.kind == KindStringList {
			return containsString(v.list, filter.str)
		}
		return v.Equal(filter)
	case KindStringList:
		switch v.kind {
		case KindString:
			return containsString(filter.list, v.str)
		case KindStringList:
			for _, want := range filter.list {
				if !containsString(v.list, want) {
					return false
				}
			}
			return true
		}
		return false
	default:
		return v.Equal(filter)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the value as its natural JSON shape; timestamps
// are encoded as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindStringList:
		return json.Marshal(v.list)
	case KindTime:
		return json.Marshal(v.ts.UTC().Format(time.RFC3339Nano))
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON decodes a value from its JSON shape. Strings that parse
// as RFC 3339 timestamps come back as KindTime, matching MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case float64:
		*v = Number(val)
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		*v = StringList(items...)
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, val); err == nil {
			*v = Time(ts)
		} else {
			*v = String(val)
		}
	default:
		*v = String("")
	}
	return nil
}

// Metadata is the open key/value bag attached to every content chunk.
// Ingestion always sets MetaSource and MetaType; domain-specific fields
// are merged in for filtering.
type Metadata map[string]Value

// Well-known metadata keys.
const (
	MetaSource      = "source"
	MetaType        = "type"
	MetaPublishedAt = "published_at"

	// Per-signal score components, written by retrieval and ranking
	// stages so the final fused score stays explainable.
	MetaVectorScore  = "vector_score"
	MetaKeywordScore = "keyword_score"
	MetaRerankScore  = "rerank_score"
	MetaRecencyScore = "recency_score"
)

// Clone returns a shallow-safe copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Number reads a numeric field, returning fallback when the key is
// absent or holds a different kind.
func (m Metadata) Number(key string, fallback float64) float64 {
	if v, ok := m[key]; ok {
		if n, ok := v.AsNumber(); ok {
			return n
		}
	}
	return fallback
}

// Matches reports whether the metadata satisfies every predicate in the
// filter. A filter key missing from the metadata never matches.
func (m Metadata) Matches(filter Filter) bool {
	for key, want := range filter {
		have, ok := m[key]
		if !ok || !have.matches(want) {
			return false
		}
	}
	return true
}

// Filter is a set of metadata predicates combined with AND semantics.
type Filter map[string]Value
