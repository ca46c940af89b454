package message

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTransfer(t *testing.T) {
	for _, v := range []float64{0.01, 1, 5, 1e9} {
		m := New()
		require.NoError(t, m.RequestTransfer(v))
		opts := m.Snapshot().Options
		require.NotNil(t, opts)
		assert.Equal(t, v, opts.Value)
		assert.Equal(t, StateWrite, opts.NextStateAccess)
	}

	for _, v := range []float64{0, -1, -0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := New()
		err := m.RequestTransfer(v)
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.Equal(t, "invalid_value", KindOf(err))
		assert.Nil(t, m.Snapshot().Options, "failed call must not create options")
	}
}

func TestNextStateAccess(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		for _, s := range []StateAccess{StateNone, StateRead, StateWrite} {
			m := New()
			require.NoError(t, m.NextStateAccess(s))
			assert.Equal(t, s, m.Snapshot().Options.NextStateAccess)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		for _, s := range []StateAccess{"", "READ", "rw", "admin"} {
			err := New().NextStateAccess(s)
			assert.ErrorIs(t, err, ErrInvalidStateAccess, "state %q", s)
		}
	})

	t.Run("conflicts with transfer", func(t *testing.T) {
		m := New()
		require.NoError(t, m.RequestTransfer(5))

		err := m.NextStateAccess(StateRead)
		require.ErrorIs(t, err, ErrConflictingOptions)
		assert.Equal(t, "conflicting_options", KindOf(err))
		assert.ErrorIs(t, m.NextStateAccess(StateNone), ErrConflictingOptions)

		require.NoError(t, m.NextStateAccess(StateWrite))
		opts := m.Snapshot().Options
		assert.Equal(t, 5.0, opts.Value)
		assert.Equal(t, StateWrite, opts.NextStateAccess)
	})

	t.Run("transfer after read upgrades to write", func(t *testing.T) {
		m := New()
		require.NoError(t, m.NextStateAccess(StateRead))
		require.NoError(t, m.RequestTransfer(2))
		assert.Equal(t, StateWrite, m.Snapshot().Options.NextStateAccess)
	})
}

func TestUpdateOnEventAndTag(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.UpdateOnEvent(""), ErrInvalidEventName)
	assert.ErrorIs(t, m.UpdateOnTag(""), ErrInvalidTagName)
	assert.Nil(t, m.Snapshot().Options)

	require.NoError(t, m.UpdateOnEvent("order-paid"))
	require.NoError(t, m.UpdateOnTag("orders"))
	require.NoError(t, m.UpdateOnEvent("order-shipped"))

	opts := m.Snapshot().Options
	assert.Equal(t, "order-shipped", opts.UpdateOnEvent)
	assert.Equal(t, "orders", opts.UpdateOnTag)
}

func TestRequestEncryption(t *testing.T) {
	m := New()
	err := m.RequestEncryption(EncryptionKey{}, nil)
	require.ErrorIs(t, err, ErrInvalidEncryptionKey)
	assert.Nil(t, m.Snapshot().Options)

	err = m.RequestEncryption(EncryptionKey{Algo: "aes-gcm"}, []string{"pin"})
	require.ErrorIs(t, err, ErrInvalidEncryptionKey)

	require.NoError(t, m.RequestEncryption(Key("3yZe7d"), nil))
	enc := m.Snapshot().Options.Encrypt
	require.NotNil(t, enc)
	assert.Equal(t, "3yZe7d", enc.Key.Key)
	assert.Nil(t, enc.Items)

	require.NoError(t, m.RequestEncryption(EncryptionKey{Key: "k", Algo: "aes-gcm"}, []string{"pin", "card"}))
	enc = m.Snapshot().Options.Encrypt
	assert.Equal(t, "aes-gcm", enc.Key.Algo)
	assert.Equal(t, []string{"pin", "card"}, enc.Items)
}

func TestRequestLocation(t *testing.T) {
	m := New().RequestLocation()
	assert.True(t, m.Snapshot().Options.Location)
}

func TestOptionMergesNext(t *testing.T) {
	m := New()
	require.NoError(t, m.Option(Options{Next: map[string]NextState{"a": {StateAccess: StateWrite}}}))
	require.NoError(t, m.Option(Options{Next: map[string]NextState{"b": {StateAccess: StateRead}}}))

	next := m.Snapshot().Options.Next
	assert.Equal(t, map[string]NextState{
		"a": {StateAccess: StateWrite},
		"b": {StateAccess: StateRead},
	}, next)

	require.NoError(t, m.Option(Options{Next: map[string]NextState{"a": {StateAccess: StateRead}}}))
	next = m.Snapshot().Options.Next
	assert.Equal(t, map[string]NextState{
		"a": {StateAccess: StateRead},
		"b": {StateAccess: StateRead},
	}, next)
}

func TestOptionShallowFields(t *testing.T) {
	m := New()
	require.NoError(t, m.Option(Options{UpdateOnTag: "a", Location: true}))
	require.NoError(t, m.Option(Options{UpdateOnTag: "b", Next: map[string]NextState{"x": {StateAccess: StateNone}}}))

	opts := m.Snapshot().Options
	assert.Equal(t, "b", opts.UpdateOnTag)
	assert.True(t, opts.Location, "unset patch fields must not clear existing ones")
	assert.Len(t, opts.Next, 1)
}

func TestOptionValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Message)
		patch Options
		want  error
	}{
		{"negative value", nil, Options{Value: -3}, ErrInvalidValue},
		{"NaN value", nil, Options{Value: math.NaN()}, ErrInvalidValue},
		{"infinite value", nil, Options{Value: math.Inf(1)}, ErrInvalidValue},
		{"bad state", nil, Options{NextStateAccess: "all"}, ErrInvalidStateAccess},
		{"bad next state", nil, Options{Next: map[string]NextState{"a": {StateAccess: "maybe"}}}, ErrInvalidStateAccess},
		{"empty encryption key", nil, Options{Encrypt: &Encryption{}}, ErrInvalidEncryptionKey},
		{"value with read", nil, Options{Value: 1, NextStateAccess: StateRead}, ErrConflictingOptions},
		{
			"value over existing read",
			func(m *Message) { _ = m.NextStateAccess(StateRead) },
			Options{Value: 1},
			ErrConflictingOptions,
		},
		{
			"read over existing transfer",
			func(m *Message) { _ = m.RequestTransfer(3) },
			Options{NextStateAccess: StateNone},
			ErrConflictingOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			if tt.setup != nil {
				tt.setup(m)
			}
			before := m.Snapshot()
			err := m.Option(tt.patch)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, m.Snapshot(), "rejected patch must leave state untouched")
		})
	}
}

func TestBlocksKeepCallOrder(t *testing.T) {
	m := New().Text("a").HTML("b").Text("c")
	blocks := m.Snapshot().Blocks
	require.Len(t, blocks, 3)
	assert.Equal(t, []Kind{KindText, KindHTML, KindText}, []Kind{blocks[0].Kind(), blocks[1].Kind(), blocks[2].Kind()})
	assert.Equal(t, []string{"a", "b", "c"}, []string{blocks[0].Content, blocks[1].Content, blocks[2].Content})
}

func TestBlockConstructors(t *testing.T) {
	m := New().
		Text("hi", Fields{"delay": 500}).
		Loading(Fields{"delay": 100}).
		Button("Go", "").
		Button("Stop", "stop", Fields{"color": "red"}).
		Buttons(Label("one"), Button{Text: "Two", Value: "2"}, Button{Text: "Three"}).
		Input("Your name", Fields{"type": "text"})

	blocks := m.Snapshot().Blocks
	require.Len(t, blocks, 6)

	assert.Equal(t, Fields{"delay": 500}, blocks[0].Fields)

	assert.Equal(t, KindLoading, blocks[1].Kind())
	assert.Equal(t, TypeText, blocks[1].Type)

	assert.Equal(t, []Button{{Text: "Go", Value: "Go"}}, blocks[2].Buttons)
	assert.Equal(t, []Button{{Text: "Stop", Value: "stop", Fields: Fields{"color": "red"}}}, blocks[3].Buttons)
	assert.Equal(t, []Button{
		{Text: "one", Value: "one"},
		{Text: "Two", Value: "2"},
		{Text: "Three", Value: "Three"},
	}, blocks[4].Buttons)

	require.NotNil(t, blocks[5].Input)
	assert.Equal(t, "Your name", blocks[5].Input.Placeholder)
	assert.Equal(t, Fields{"type": "text"}, blocks[5].Input.Fields)
}

func TestCallerFieldsOverrideTypedKeys(t *testing.T) {
	m := New().
		Button("Go", "go", Fields{"value": "override"}).
		Input("Name", Fields{"placeholder": "Email"}).
		Text("draft", Fields{"content": "final"}).
		Button("Qty", "", Fields{"value": 3})

	blocks := m.Snapshot().Blocks
	require.Len(t, blocks, 4)
	assert.Equal(t, []Button{{Text: "Go", Value: "override"}}, blocks[0].Buttons)
	assert.Equal(t, &Input{Placeholder: "Email"}, blocks[1].Input)
	assert.Equal(t, "final", blocks[2].Content)
	assert.Nil(t, blocks[2].Fields)

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages": [
		{"type": "button", "content": [{"text": "Go", "value": "override"}]},
		{"type": "input", "content": {"placeholder": "Email"}},
		{"type": "text", "content": "final"},
		{"type": "button", "content": [{"text": "Qty", "value": 3}]}
	]}`, string(data))
}

func TestPushedFieldsWinOnTheWire(t *testing.T) {
	b := TextBlock("plain")
	b.Fields = Fields{"type": "html"}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "html", "content": "plain"}`, string(data))
}

func TestFactories(t *testing.T) {
	assert.Equal(t, 0, New().Len())
	assert.Equal(t, 0, NewText("").Len(), "empty seed content adds no block")

	m := NewText("hello", Fields{"bold": true})
	blocks := m.Snapshot().Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, KindText, blocks[0].Kind())
	assert.Equal(t, "hello", blocks[0].Content)

	m = NewHTML("<b>hi</b>")
	assert.Equal(t, KindHTML, m.Snapshot().Blocks[0].Kind())

	m = New(TextSeed("a"), HTMLSeed("b"))
	assert.Equal(t, 2, m.Len())

	m, err := SendLoading("payment-confirmed")
	require.NoError(t, err)
	snap := m.Snapshot()
	require.Len(t, snap.Blocks, 1)
	assert.Equal(t, KindLoading, snap.Blocks[0].Kind())
	assert.Equal(t, "payment-confirmed", snap.Options.UpdateOnEvent)

	_, err = SendLoading("")
	assert.ErrorIs(t, err, ErrInvalidEventName)
}

func TestSnapshotIsDetached(t *testing.T) {
	m := NewText("a", Fields{"meta": map[string]any{"k": "v"}})
	require.NoError(t, m.Option(Options{Next: map[string]NextState{"a": {StateAccess: StateRead}}}))
	snap := m.Snapshot()

	m.Text("b")
	require.NoError(t, m.Option(Options{Next: map[string]NextState{"b": {StateAccess: StateRead}}}))
	snap.Blocks[0].Fields["meta"].(map[string]any)["k"] = "changed"

	assert.Len(t, snap.Blocks, 1)
	assert.Len(t, snap.Options.Next, 1)
	assert.Equal(t, "v", m.Snapshot().Blocks[0].Fields["meta"].(map[string]any)["k"])
}

func TestSnapshotJSON(t *testing.T) {
	m := NewText("Pay?")
	require.NoError(t, m.RequestTransfer(5))
	require.NoError(t, m.RequestEncryption(Key("abc"), []string{"pin"}))
	_, err := m.ButtonRow().Button("Yes").Button("No", Value("no"), Next(StateRead)).EndRow()
	require.NoError(t, err)

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"messages": [
			{"type": "text", "content": "Pay?"},
			{"type": "button", "content": [
				{"text": "Yes", "value": "Yes"},
				{"text": "No", "value": "no"}
			]}
		],
		"options": {
			"value": 5,
			"nextStateAccess": "write",
			"encrypt": {"key": "abc", "items": ["pin"]},
			"next": {"no": {"stateAccess": "read"}}
		}
	}`, string(data))

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.Snapshot(), back)
}

func TestEmptySnapshotJSON(t *testing.T) {
	data, err := json.Marshal(New().Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages": []}`, string(data))
}

func TestEncryptionKeyJSON(t *testing.T) {
	data, err := json.Marshal(EncryptionKey{Key: "k", Algo: "aes", Params: map[string]any{"iv": "00"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "k", "algo": "aes", "params": {"iv": "00"}}`, string(data))

	var k EncryptionKey
	require.NoError(t, json.Unmarshal([]byte(`"bare"`), &k))
	assert.Equal(t, Key("bare"), k)

	require.NoError(t, json.Unmarshal(data, &k))
	assert.Equal(t, "aes", k.Algo)

	assert.Error(t, json.Unmarshal([]byte(`{"key": "k", "mode": "x"}`), &k))
}

func TestValidationErrorMessage(t *testing.T) {
	err := New().NextStateAccess("bogus")
	assert.EqualError(t, err, `message.NextStateAccess: state access must be 'none', 'read' or 'write': got "bogus"`)
	assert.Equal(t, "", KindOf(nil))
}

func TestRestore(t *testing.T) {
	m := NewText("a")
	require.NoError(t, m.Option(Options{Next: map[string]NextState{"a": {StateAccess: StateRead}}}))

	r := Restore(m.Snapshot())
	assert.Equal(t, m.Snapshot(), r.Snapshot())

	r.HTML("b")
	require.NoError(t, r.Option(Options{Next: map[string]NextState{"b": {StateAccess: StateWrite}}}))
	assert.Equal(t, 1, m.Len())
	assert.Len(t, m.Snapshot().Options.Next, 1)
	assert.Len(t, r.Snapshot().Options.Next, 2)

	assert.Equal(t, 0, Restore(Snapshot{}).Len())
}
