package message

import (
	"encoding/json"
	"fmt"
	"maps"
)

// BlockType is the wire type of a content block.
type BlockType string

const (
	TypeText   BlockType = "text"
	TypeHTML   BlockType = "html"
	TypeButton BlockType = "button"
	TypeInput  BlockType = "input"
	TypeSelect BlockType = "select"
)

// Kind distinguishes the six block variants. Loading indicators travel as
// text blocks, so Kind is derived rather than serialized.
type Kind string

const (
	KindText    Kind = "text"
	KindHTML    Kind = "html"
	KindLoading Kind = "loading"
	KindButton  Kind = "button"
	KindInput   Kind = "input"
	KindSelect  Kind = "select"
)

// Fields are free-form per-block or per-item options understood by the
// client. They are flattened next to the typed fields on the wire and win
// on collision.
type Fields map[string]any

// Button is one button of a button block.
type Button struct {
	Text   string
	Value  string
	Fields Fields
}

// Input is the content of an input block.
type Input struct {
	Placeholder string
	Fields      Fields
}

// SelectButton is the confirm button rendered under a select.
type SelectButton struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// Choice is one entry of a select. Value is usually a string or the
// positional index assigned by SelectBuilder.Add.
type Choice struct {
	Text   string
	Value  any
	Fields Fields
}

// SelectContent is the content of a select block.
type SelectContent struct {
	Placeholder    string
	SearchSelect   bool
	MultipleSelect bool
	Button         SelectButton
	Options        []Choice
	Fields         Fields
}

// Block is one unit of displayable or interactive content. Which of the
// content fields is meaningful depends on Type (and Loading for text blocks).
type Block struct {
	Type    BlockType
	Content string
	Loading bool
	Buttons []Button
	Input   *Input
	Select  *SelectContent
	Fields  Fields
}

// TextBlock returns a text block.
func TextBlock(content string, fields ...Fields) Block {
	f := liftString(mergeFields(fields), "content", &content)
	return Block{Type: TypeText, Content: content, Fields: f}
}

// HTMLBlock returns an html block.
func HTMLBlock(content string, fields ...Fields) Block {
	f := liftString(mergeFields(fields), "content", &content)
	return Block{Type: TypeHTML, Content: content, Fields: f}
}

// LoadingBlock returns a loading indicator.
func LoadingBlock(fields ...Fields) Block {
	return Block{Type: TypeText, Loading: true, Fields: mergeFields(fields)}
}

// ButtonBlock returns a button row containing buttons in order.
func ButtonBlock(buttons ...Button) Block {
	return Block{Type: TypeButton, Buttons: buttons}
}

// InputBlock returns an input block.
func InputBlock(placeholder string, fields ...Fields) Block {
	f := liftString(mergeFields(fields), "placeholder", &placeholder)
	return Block{Type: TypeInput, Input: &Input{Placeholder: placeholder, Fields: f}}
}

// Kind returns the variant of b.
func (b Block) Kind() Kind {
	if b.Type == TypeText && b.Loading {
		return KindLoading
	}
	return Kind(b.Type)
}

func (b Block) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Fields)+3)
	out["type"] = b.Type
	switch b.Type {
	case TypeText, TypeHTML:
		if b.Loading {
			out["loading"] = true
		} else {
			out["content"] = b.Content
		}
	case TypeButton:
		buttons := b.Buttons
		if buttons == nil {
			buttons = []Button{}
		}
		out["content"] = buttons
	case TypeInput:
		if b.Input != nil {
			out["content"] = b.Input
		}
	case TypeSelect:
		if b.Select != nil {
			out["content"] = b.Select
		}
	default:
		return nil, fmt.Errorf("message: unknown block type %q", b.Type)
	}
	maps.Copy(out, b.Fields)
	return json.Marshal(out)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("block: %w", err)
	}
	var out Block
	if err := takeField(raw, "type", &out.Type); err != nil {
		return fmt.Errorf("block: %w", err)
	}
	switch out.Type {
	case TypeText, TypeHTML:
		if err := takeField(raw, "loading", &out.Loading); err != nil {
			return fmt.Errorf("block: %w", err)
		}
		if err := takeField(raw, "content", &out.Content); err != nil {
			return fmt.Errorf("block: %w", err)
		}
	case TypeButton:
		if err := takeField(raw, "content", &out.Buttons); err != nil {
			return fmt.Errorf("button block: %w", err)
		}
	case TypeInput:
		out.Input = &Input{}
		if err := takeField(raw, "content", out.Input); err != nil {
			return fmt.Errorf("input block: %w", err)
		}
	case TypeSelect:
		out.Select = &SelectContent{}
		if err := takeField(raw, "content", out.Select); err != nil {
			return fmt.Errorf("select block: %w", err)
		}
	default:
		return fmt.Errorf("block: unknown type %q", out.Type)
	}
	if out.Fields, err = restFields(raw); err != nil {
		return fmt.Errorf("block: %w", err)
	}
	*b = out
	return nil
}

func (b Button) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Fields)+2)
	out["text"] = b.Text
	out["value"] = b.Value
	maps.Copy(out, b.Fields)
	return json.Marshal(out)
}

func (b *Button) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("button: %w", err)
	}
	var out Button
	if err := takeField(raw, "text", &out.Text); err != nil {
		return fmt.Errorf("button: %w", err)
	}
	if err := takeField(raw, "value", &out.Value); err != nil {
		return fmt.Errorf("button: %w", err)
	}
	if out.Fields, err = restFields(raw); err != nil {
		return fmt.Errorf("button: %w", err)
	}
	*b = out
	return nil
}

func (in Input) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(in.Fields)+1)
	out["placeholder"] = in.Placeholder
	maps.Copy(out, in.Fields)
	return json.Marshal(out)
}

func (in *Input) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	var out Input
	if err := takeField(raw, "placeholder", &out.Placeholder); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if out.Fields, err = restFields(raw); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	*in = out
	return nil
}

func (c Choice) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Fields)+2)
	if c.Text != "" {
		out["text"] = c.Text
	}
	if c.Value != nil {
		out["value"] = c.Value
	}
	maps.Copy(out, c.Fields)
	return json.Marshal(out)
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("choice: %w", err)
	}
	var out Choice
	if err := takeField(raw, "text", &out.Text); err != nil {
		return fmt.Errorf("choice: %w", err)
	}
	if err := takeField(raw, "value", &out.Value); err != nil {
		return fmt.Errorf("choice: %w", err)
	}
	if out.Fields, err = restFields(raw); err != nil {
		return fmt.Errorf("choice: %w", err)
	}
	*c = out
	return nil
}

func (s SelectContent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+5)
	options := s.Options
	if options == nil {
		options = []Choice{}
	}
	out["placeholder"] = s.Placeholder
	out["searchselect"] = s.SearchSelect
	out["multipleselect"] = s.MultipleSelect
	out["button"] = s.Button
	out["options"] = options
	maps.Copy(out, s.Fields)
	return json.Marshal(out)
}

func (s *SelectContent) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	out := defaultSelect("")
	for key, dst := range map[string]any{
		"placeholder":    &out.Placeholder,
		"searchselect":   &out.SearchSelect,
		"multipleselect": &out.MultipleSelect,
		"button":         &out.Button,
		"options":        &out.Options,
	} {
		if err := takeField(raw, key, dst); err != nil {
			return fmt.Errorf("select: %w", err)
		}
	}
	if out.Fields, err = restFields(raw); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	*s = out
	return nil
}

// --- helpers ---

func splitObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected an object")
	}
	return raw, nil
}

// takeField decodes raw[key] into dst, if present, and removes it from raw.
func takeField(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	delete(raw, key)
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

func restFields(raw map[string]json.RawMessage) (Fields, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	f := make(Fields, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		f[k] = val
	}
	return f, nil
}

// liftString moves a string entry of f into dst so the typed field carries
// the caller's override. Entries of other types stay in f and win on the
// wire.
func liftString(f Fields, key string, dst *string) Fields {
	if v, ok := f[key].(string); ok {
		*dst = v
		delete(f, key)
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

func mergeFields(fields []Fields) Fields {
	var out Fields
	for _, f := range fields {
		if len(f) == 0 {
			continue
		}
		if out == nil {
			out = make(Fields, len(f))
		}
		maps.Copy(out, f)
	}
	return out
}

func cloneFields(f map[string]any) map[string]any {
	if f == nil {
		return nil
	}
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneFields(t)
	case Fields:
		return Fields(cloneFields(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func (b Block) clone() Block {
	c := b
	c.Fields = Fields(cloneFields(b.Fields))
	if b.Buttons != nil {
		c.Buttons = make([]Button, len(b.Buttons))
		for i, btn := range b.Buttons {
			btn.Fields = Fields(cloneFields(btn.Fields))
			c.Buttons[i] = btn
		}
	}
	if b.Input != nil {
		in := *b.Input
		in.Fields = Fields(cloneFields(in.Fields))
		c.Input = &in
	}
	if b.Select != nil {
		s := *b.Select
		s.Fields = Fields(cloneFields(s.Fields))
		if s.Options != nil {
			s.Options = make([]Choice, len(b.Select.Options))
			for i, ch := range b.Select.Options {
				ch.Fields = Fields(cloneFields(ch.Fields))
				ch.Value = cloneValue(ch.Value)
				s.Options[i] = ch
			}
		}
		c.Select = &s
	}
	return c
}
