package message

const (
	defaultSelectIcon  = "check"
	defaultSelectLabel = "OK"
)

func defaultSelect(placeholder string) SelectContent {
	return SelectContent{
		Placeholder: placeholder,
		Button:      SelectButton{Icon: defaultSelectIcon, Label: defaultSelectLabel},
		Options:     []Choice{},
	}
}

// SelectOption overrides one of the select defaults.
type SelectOption func(*SelectContent)

// Searchable toggles the search box.
func Searchable(on bool) SelectOption {
	return func(c *SelectContent) { c.SearchSelect = on }
}

// Multiple toggles multiple selection.
func Multiple(on bool) SelectOption {
	return func(c *SelectContent) { c.MultipleSelect = on }
}

// ConfirmButton replaces the default check/OK confirm button.
func ConfirmButton(icon, label string) SelectOption {
	return func(c *SelectContent) { c.Button = SelectButton{Icon: icon, Label: label} }
}

// Preset replaces the initial choices.
func Preset(choices ...Choice) SelectOption {
	return func(c *SelectContent) { c.Options = append([]Choice{}, choices...) }
}

// SelectFields attaches free-form fields to the select content.
func SelectFields(f Fields) SelectOption {
	return func(c *SelectContent) {
		c.Fields = mergeFields([]Fields{c.Fields, f})
	}
}

// Item is anything SelectBuilder.Add accepts: a Label or a Choice.
type Item interface {
	choice(index int) Choice
}

// A Label added to a select gets its position in the Add call as value.
func (l Label) choice(index int) Choice {
	return Choice{Text: string(l), Value: index}
}

func (c Choice) choice(int) Choice { return c }

// SelectBuilder collects the choices of one select block. It is single use.
type SelectBuilder struct {
	parent  *Message
	content SelectContent
	done    bool
}

// Add appends items in order. A Label gets as value its index among the
// items of this call, so labels added over several calls repeat indices.
func (s *SelectBuilder) Add(items ...Item) *SelectBuilder {
	if s.done {
		return s
	}
	for i, it := range items {
		s.content.Options = append(s.content.Options, it.choice(i))
	}
	return s
}

// AddLabels is Add for plain strings.
func (s *SelectBuilder) AddLabels(labels ...string) *SelectBuilder {
	items := make([]Item, len(labels))
	for i, l := range labels {
		items[i] = Label(l)
	}
	return s.Add(items...)
}

// EndSelect appends the select to the parent message and returns it.
func (s *SelectBuilder) EndSelect() (*Message, error) {
	if s.done {
		return nil, &ValidationError{Op: "Select.EndSelect", Err: ErrBuilderClosed}
	}
	s.done = true
	content := s.content
	return s.parent.Push(Block{Type: TypeSelect, Select: &content}), nil
}
