package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
)

// StateAccess is the permission level requested for processing the reply
// to a message.
type StateAccess string

const (
	StateNone  StateAccess = "none"
	StateRead  StateAccess = "read"
	StateWrite StateAccess = "write"
)

// Valid reports whether s is one of none, read or write.
func (s StateAccess) Valid() bool {
	switch s {
	case StateNone, StateRead, StateWrite:
		return true
	}
	return false
}

// NextState is the follow-up rule attached to a single button value.
type NextState struct {
	StateAccess StateAccess `json:"stateAccess"`
}

// EncryptionKey is either a bare key (serialized as a string) or a key with
// an algorithm and its parameters (serialized as an object).
type EncryptionKey struct {
	Key    string         `json:"key"`
	Algo   string         `json:"algo,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// Key returns a bare encryption key that uses the client's default algorithm.
func Key(key string) EncryptionKey {
	return EncryptionKey{Key: key}
}

func (k EncryptionKey) bare() bool {
	return k.Algo == "" && len(k.Params) == 0
}

func (k EncryptionKey) MarshalJSON() ([]byte, error) {
	if k.bare() {
		return json.Marshal(k.Key)
	}
	type plain EncryptionKey
	return json.Marshal(plain(k))
}

func (k *EncryptionKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*k = EncryptionKey{}
		return json.Unmarshal(data, &k.Key)
	}
	type plain EncryptionKey
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return fmt.Errorf("encryption key: %w", err)
	}
	*k = EncryptionKey(p)
	return nil
}

// Encryption asks the client to encrypt the reply fields named in Items
// (all fields when Items is empty) with Key.
type Encryption struct {
	Key   EncryptionKey `json:"key"`
	Items []string      `json:"items,omitempty"`
}

// Options are the message-wide delivery and behavior settings. A zero field
// means "not set": it is neither serialized nor applied by a merge.
type Options struct {
	Value           float64              `json:"value,omitempty"`
	NextStateAccess StateAccess          `json:"nextStateAccess,omitempty"`
	Location        bool                 `json:"location,omitempty"`
	UpdateOnEvent   string               `json:"updateOnEvent,omitempty"`
	UpdateOnTag     string               `json:"updateOnTag,omitempty"`
	Encrypt         *Encryption          `json:"encrypt,omitempty"`
	Next            map[string]NextState `json:"next,omitempty"`
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validatePatch checks patch on its own and against the state it would
// produce when merged over cur.
func validatePatch(op string, cur, patch Options) error {
	if patch.Value < 0 || !finite(patch.Value) {
		return invalid(op, ErrInvalidValue, "%v", patch.Value)
	}
	if patch.NextStateAccess != "" && !patch.NextStateAccess.Valid() {
		return invalid(op, ErrInvalidStateAccess, "got %q", patch.NextStateAccess)
	}
	for _, value := range slices.Sorted(maps.Keys(patch.Next)) {
		if s := patch.Next[value].StateAccess; !s.Valid() {
			return invalid(op, ErrInvalidStateAccess, "next[%q] got %q", value, s)
		}
	}
	if patch.Encrypt != nil && patch.Encrypt.Key.Key == "" {
		return invalid(op, ErrInvalidEncryptionKey, "key is empty")
	}

	value, access := cur.Value, cur.NextStateAccess
	if patch.Value != 0 {
		value = patch.Value
	}
	if patch.NextStateAccess != "" {
		access = patch.NextStateAccess
	}
	if value > 0 && access != "" && access != StateWrite {
		return invalid(op, ErrConflictingOptions, "value %v with nextStateAccess %q", value, access)
	}
	return nil
}

// merge applies patch over o. Every set field of patch replaces the one in o,
// except Next which is merged key by key.
func (o *Options) merge(patch Options) {
	var next map[string]NextState
	if patch.Next != nil {
		next = make(map[string]NextState, len(o.Next)+len(patch.Next))
		maps.Copy(next, o.Next)
		maps.Copy(next, patch.Next)
	}

	if patch.Value != 0 {
		o.Value = patch.Value
	}
	if patch.NextStateAccess != "" {
		o.NextStateAccess = patch.NextStateAccess
	}
	if patch.Location {
		o.Location = true
	}
	if patch.UpdateOnEvent != "" {
		o.UpdateOnEvent = patch.UpdateOnEvent
	}
	if patch.UpdateOnTag != "" {
		o.UpdateOnTag = patch.UpdateOnTag
	}
	if patch.Encrypt != nil {
		o.Encrypt = patch.Encrypt.clone()
	}
	if next != nil {
		o.Next = next
	}
}

func (e *Encryption) clone() *Encryption {
	if e == nil {
		return nil
	}
	c := &Encryption{Key: e.Key, Items: slices.Clone(e.Items)}
	if e.Key.Params != nil {
		c.Key.Params = cloneFields(e.Key.Params)
	}
	return c
}

func (o *Options) clone() *Options {
	if o == nil {
		return nil
	}
	c := *o
	c.Encrypt = o.Encrypt.clone()
	if o.Next != nil {
		c.Next = maps.Clone(o.Next)
	}
	return &c
}
