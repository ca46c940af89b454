package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectDefaults(t *testing.T) {
	m, err := New().Select("Pick one").AddLabels("x", "y").EndSelect()
	require.NoError(t, err)

	blocks := m.Snapshot().Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, KindSelect, blocks[0].Kind())

	sel := blocks[0].Select
	require.NotNil(t, sel)
	assert.Equal(t, "Pick one", sel.Placeholder)
	assert.False(t, sel.SearchSelect)
	assert.False(t, sel.MultipleSelect)
	assert.Equal(t, SelectButton{Icon: "check", Label: "OK"}, sel.Button)
	assert.Equal(t, []Choice{{Text: "x", Value: 0}, {Text: "y", Value: 1}}, sel.Options)
}

func TestSelectOverrides(t *testing.T) {
	m, err := New().Select("Cities",
		Searchable(true),
		Multiple(true),
		ConfirmButton("send", "Go"),
		SelectFields(Fields{"maxItems": 3}),
	).EndSelect()
	require.NoError(t, err)

	sel := m.Snapshot().Blocks[0].Select
	assert.True(t, sel.SearchSelect)
	assert.True(t, sel.MultipleSelect)
	assert.Equal(t, SelectButton{Icon: "send", Label: "Go"}, sel.Button)
	assert.Equal(t, Fields{"maxItems": 3}, sel.Fields)
	assert.Equal(t, []Choice{}, sel.Options)
}

func TestSelectAddIndexIsPerCall(t *testing.T) {
	m, err := New().Select("Pick").
		Add(Label("a"), Choice{Text: "b", Value: "bee"}, Label("c")).
		AddLabels("d").
		Add(Label("e")).
		EndSelect()
	require.NoError(t, err)

	assert.Equal(t, []Choice{
		{Text: "a", Value: 0},
		{Text: "b", Value: "bee"},
		{Text: "c", Value: 2},
		{Text: "d", Value: 0},
		{Text: "e", Value: 0},
	}, m.Snapshot().Blocks[0].Select.Options)
}

func TestSelectPreset(t *testing.T) {
	m, err := New().Select("Size", Preset(Choice{Text: "S", Value: "s"})).AddLabels("M").EndSelect()
	require.NoError(t, err)
	assert.Equal(t, []Choice{{Text: "S", Value: "s"}, {Text: "M", Value: 0}}, m.Snapshot().Blocks[0].Select.Options)
}

func TestSelectSingleUse(t *testing.T) {
	m := New()
	sel := m.Select("Pick").AddLabels("a")
	_, err := sel.EndSelect()
	require.NoError(t, err)

	sel.AddLabels("b")
	_, err = sel.EndSelect()
	require.ErrorIs(t, err, ErrBuilderClosed)
	assert.Equal(t, 1, m.Len())
	assert.Len(t, m.Snapshot().Blocks[0].Select.Options, 1)
}

func TestSelectJSON(t *testing.T) {
	m, err := New().Select("Pick one").AddLabels("x", "y").EndSelect()
	require.NoError(t, err)

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages": [{
		"type": "select",
		"content": {
			"placeholder": "Pick one",
			"searchselect": false,
			"multipleselect": false,
			"button": {"icon": "check", "label": "OK"},
			"options": [{"text": "x", "value": 0}, {"text": "y", "value": 1}]
		}
	}]}`, string(data))
}

func TestChoiceObjectsAreVerbatim(t *testing.T) {
	m, err := New().Select("Size").Add(Choice{Value: "xl"}, Choice{Text: "Medium", Fields: Fields{"group": "std"}}).EndSelect()
	require.NoError(t, err)

	data, err := json.Marshal(m.Snapshot().Blocks[0].Select.Options)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"value": "xl"}, {"text": "Medium", "group": "std"}]`, string(data))
}

func TestBlockUnmarshal(t *testing.T) {
	var b Block
	require.NoError(t, json.Unmarshal([]byte(`{"type": "input", "content": {"placeholder": "Email", "type": "email"}, "delay": 2}`), &b))
	assert.Equal(t, KindInput, b.Kind())
	assert.Equal(t, &Input{Placeholder: "Email", Fields: Fields{"type": "email"}}, b.Input)
	assert.Equal(t, Fields{"delay": 2.0}, b.Fields)

	require.NoError(t, json.Unmarshal([]byte(`{"type": "text", "loading": true}`), &b))
	assert.Equal(t, KindLoading, b.Kind())

	require.NoError(t, json.Unmarshal([]byte(`{"type": "select", "content": {"placeholder": "P"}}`), &b))
	assert.Equal(t, SelectButton{Icon: "check", Label: "OK"}, b.Select.Button, "missing select fields take defaults")

	assert.Error(t, json.Unmarshal([]byte(`{"type": "video"}`), &b))
	assert.Error(t, json.Unmarshal([]byte(`{"content": "x"}`), &b))
	assert.Error(t, json.Unmarshal([]byte(`{"type": "button", "content": "x"}`), &b))
}
