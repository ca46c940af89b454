package message

// ButtonOption customizes one button added through RowBuilder.Button.
type ButtonOption func(*buttonConfig)

type buttonConfig struct {
	text   string
	value  string
	fields Fields
	next   *NextState
	err    error
}

// Value sets the value sent back when the button is pressed. An empty value
// keeps the default, which is the button text.
func Value(v string) ButtonOption {
	return func(s *buttonConfig) {
		if v != "" {
			s.value = v
		}
	}
}

// Extra attaches free-form fields to the button. String "text" and "value"
// entries replace the button text and value; an empty value keeps the
// default. The value keys the next map, so a value that is not a string is
// rejected with ErrInvalidValue.
func Extra(f Fields) ButtonOption {
	return func(s *buttonConfig) {
		for k, v := range f {
			switch k {
			case "text", "value":
				str, ok := v.(string)
				if !ok {
					if s.err == nil {
						s.err = invalid("ButtonRow.Button", ErrInvalidValue, "%s must be a string, got %T", k, v)
					}
					continue
				}
				if k == "text" {
					s.text = str
				} else if str != "" {
					s.value = str
				}
			default:
				if s.fields == nil {
					s.fields = make(Fields, len(f))
				}
				s.fields[k] = v
			}
		}
	}
}

// Next sets the state access requested when this button is the reply.
func Next(access StateAccess) ButtonOption {
	return NextRule(NextState{StateAccess: access})
}

// NextRule is Next with a full descriptor.
func NextRule(n NextState) ButtonOption {
	return func(s *buttonConfig) {
		s.next = &n
	}
}

// RowBuilder collects the buttons of one row. It is single use: after EndRow
// every call is ignored and EndRow fails with ErrBuilderClosed.
type RowBuilder struct {
	parent  *Message
	buttons []Button
	err     error
	done    bool
}

// Button appends a button. A next state given through Next or NextRule is
// registered right away in the parent's next map under the button value.
// The first rejected option is kept and reported by EndRow.
func (r *RowBuilder) Button(text string, opts ...ButtonOption) *RowBuilder {
	if r.done || r.err != nil {
		return r
	}
	cfg := buttonConfig{text: text, value: text}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		r.err = cfg.err
		return r
	}
	if cfg.next != nil {
		patch := Options{Next: map[string]NextState{cfg.value: *cfg.next}}
		if err := r.parent.setOption("ButtonRow.Button", patch); err != nil {
			r.err = err
			return r
		}
	}
	r.buttons = append(r.buttons, Button{Text: cfg.text, Value: cfg.value, Fields: cfg.fields})
	return r
}

// Buttons appends simple buttons without next state.
func (r *RowBuilder) Buttons(items ...ButtonItem) *RowBuilder {
	if r.done || r.err != nil {
		return r
	}
	r.buttons = append(r.buttons, toButtons(items)...)
	return r
}

// EndRow appends the row to the parent message and returns it.
func (r *RowBuilder) EndRow() (*Message, error) {
	if r.done {
		return nil, &ValidationError{Op: "ButtonRow.EndRow", Err: ErrBuilderClosed}
	}
	r.done = true
	if r.err != nil {
		return nil, r.err
	}
	buttons := r.buttons
	if buttons == nil {
		buttons = []Button{}
	}
	return r.parent.Push(ButtonBlock(buttons...)), nil
}
