package catalog

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// AttributeStore is a typed key/value bag for a package's fields that have
// no dedicated slot on Pkg: unrecognized control fields, vendor extensions,
// and anything else that should survive a parse/encode round trip without
// the catalog needing to know its shape ahead of time.
//
// The source models this as an append-only buffer of tagged records,
// overwriting in place when a new value fits and otherwise appending a
// fresh record. Go's map already gives us get/set semantics for free; what
// we keep from that design is the insertion-ordered key list (so encoding
// reproduces field order) and a diagnostic log line on growth, in place of
// the original's truncation warning.
type AttributeStore struct {
	log    *zap.Logger
	order  []string
	values map[string]any
}

// NewAttributeStore creates an empty store. log may be nil, in which case
// diagnostics are discarded.
func NewAttributeStore(log *zap.Logger) *AttributeStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttributeStore{log: log, values: make(map[string]any)}
}

func (s *AttributeStore) set(id string, value any) {
	if _, found := s.values[id]; !found {
		s.order = append(s.order, id)
	}
	s.values[id] = value
}

// SetString stores a whitespace-trimmed string record.
func (s *AttributeStore) SetString(id, value string) {
	value = strings.TrimSpace(value)
	if old, ok := s.values[id].(string); ok && len(value) > len(old) {
		s.log.Debug("attribute store record grew on overwrite", zap.String("id", id))
	}
	s.set(id, value)
}

// SetInt stores a native-word integer record.
func (s *AttributeStore) SetInt(id string, value int) {
	s.set(id, value)
}

// SetPointer stores an opaque reference to a structure owned elsewhere.
func (s *AttributeStore) SetPointer(id string, value any) {
	s.set(id, value)
}

// String returns the string record for id, if one is set and of string type.
func (s *AttributeStore) String(id string) (string, bool) {
	v, ok := s.values[id].(string)
	return v, ok
}

// Int returns the integer record for id, if one is set and of int type.
func (s *AttributeStore) Int(id string) (int, bool) {
	v, ok := s.values[id].(int)
	return v, ok
}

// Pointer returns the opaque record for id, if set.
func (s *AttributeStore) Pointer(id string) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Keys returns the stored attribute ids in insertion order.
func (s *AttributeStore) Keys() []string {
	return s.order
}

// StringOrEmpty is a convenience accessor returning "" for an absent or
// non-string record, used by encoders that do not need to distinguish
// "absent" from "empty".
func (s *AttributeStore) StringOrEmpty(id string) string {
	v, _ := s.String(id)
	return v
}

// IntOrZero mirrors StringOrEmpty for integer records, parsing a fallback
// string representation if the record happens to have been set as text.
func (s *AttributeStore) IntOrZero(id string) int {
	if v, ok := s.Int(id); ok {
		return v
	}
	if str, ok := s.String(id); ok {
		if n, err := strconv.Atoi(str); err == nil {
			return n
		}
	}
	return 0
}
