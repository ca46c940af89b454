package message

// Message accumulates content blocks and delivery options for one outgoing
// bot message. It is not safe for concurrent use.
type Message struct {
	blocks  []Block
	options *Options
}

// Seed is the optional initial block of a message built by New.
type Seed struct {
	block Block
}

// TextSeed seeds a message with a text block.
func TextSeed(content string, fields ...Fields) Seed {
	return Seed{block: TextBlock(content, fields...)}
}

// HTMLSeed seeds a message with an html block.
func HTMLSeed(content string, fields ...Fields) Seed {
	return Seed{block: HTMLBlock(content, fields...)}
}

// New returns a message holding one block per seed. Seeds with empty
// content are skipped.
func New(seeds ...Seed) *Message {
	m := &Message{blocks: []Block{}}
	for _, s := range seeds {
		if s.block.Content == "" {
			continue
		}
		m.Push(s.block)
	}
	return m
}

// NewText returns a message starting with a text block.
func NewText(content string, fields ...Fields) *Message {
	return New(TextSeed(content, fields...))
}

// NewHTML returns a message starting with an html block.
func NewHTML(content string, fields ...Fields) *Message {
	return New(HTMLSeed(content, fields...))
}

// SendLoading returns a message holding a single loading indicator that the
// client replaces when event fires.
func SendLoading(event string, fields ...Fields) (*Message, error) {
	m := New().Loading(fields...)
	if err := m.UpdateOnEvent(event); err != nil {
		return nil, err
	}
	return m, nil
}

// Option merges patch into the message options. See Options for the merge
// rules. Nothing is changed when patch is rejected.
func (m *Message) Option(patch Options) error {
	return m.setOption("Option", patch)
}

func (m *Message) setOption(op string, patch Options) error {
	var cur Options
	if m.options != nil {
		cur = *m.options
	}
	if err := validatePatch(op, cur, patch); err != nil {
		return err
	}
	if m.options == nil {
		m.options = &Options{}
	}
	m.options.merge(patch)
	return nil
}

// RequestTransfer asks the user to transfer value. It implies write access
// to the reply.
func (m *Message) RequestTransfer(value float64) error {
	if !(value > 0) || !finite(value) {
		return invalid("RequestTransfer", ErrInvalidValue, "%v", value)
	}
	return m.setOption("RequestTransfer", Options{Value: value, NextStateAccess: StateWrite})
}

// RequestLocation asks the client to attach the user's location to the reply.
func (m *Message) RequestLocation() *Message {
	if m.options == nil {
		m.options = &Options{}
	}
	m.options.merge(Options{Location: true})
	return m
}

// NextStateAccess sets the state access requested for the reply.
func (m *Message) NextStateAccess(state StateAccess) error {
	if !state.Valid() {
		return invalid("NextStateAccess", ErrInvalidStateAccess, "got %q", state)
	}
	if m.options != nil && m.options.Value > 0 && state != StateWrite {
		return invalid("NextStateAccess", ErrConflictingOptions,
			"cannot set %q while a transfer of %v is requested", state, m.options.Value)
	}
	return m.setOption("NextStateAccess", Options{NextStateAccess: state})
}

// UpdateOnEvent makes the client refresh the message when event fires.
func (m *Message) UpdateOnEvent(event string) error {
	if event == "" {
		return invalid("UpdateOnEvent", ErrInvalidEventName, "event name is empty")
	}
	return m.setOption("UpdateOnEvent", Options{UpdateOnEvent: event})
}

// UpdateOnTag makes the client refresh the message when tag is emitted.
func (m *Message) UpdateOnTag(tag string) error {
	if tag == "" {
		return invalid("UpdateOnTag", ErrInvalidTagName, "tag name is empty")
	}
	return m.setOption("UpdateOnTag", Options{UpdateOnTag: tag})
}

// RequestEncryption asks the client to encrypt the reply with key. When items
// is nil every field is encrypted.
func (m *Message) RequestEncryption(key EncryptionKey, items []string) error {
	if key.Key == "" {
		return invalid("RequestEncryption", ErrInvalidEncryptionKey, "key is empty")
	}
	return m.setOption("RequestEncryption", Options{Encrypt: &Encryption{Key: key, Items: items}})
}

// Push appends b as is.
func (m *Message) Push(b Block) *Message {
	m.blocks = append(m.blocks, b)
	return m
}

func (m *Message) Text(content string, fields ...Fields) *Message {
	return m.Push(TextBlock(content, fields...))
}

func (m *Message) HTML(content string, fields ...Fields) *Message {
	return m.Push(HTMLBlock(content, fields...))
}

func (m *Message) Loading(fields ...Fields) *Message {
	return m.Push(LoadingBlock(fields...))
}

// Button appends a row with a single button. An empty value defaults to text.
func (m *Message) Button(text, value string, fields ...Fields) *Message {
	if value == "" {
		value = text
	}
	f := liftString(mergeFields(fields), "text", &text)
	f = liftString(f, "value", &value)
	return m.Push(ButtonBlock(Button{Text: text, Value: value, Fields: f}))
}

// Buttons appends one row holding every item in order.
func (m *Message) Buttons(items ...ButtonItem) *Message {
	return m.Push(ButtonBlock(toButtons(items)...))
}

func (m *Message) Input(placeholder string, fields ...Fields) *Message {
	return m.Push(InputBlock(placeholder, fields...))
}

// ButtonRow starts a button row whose buttons may carry their own next
// state. The row is appended by RowBuilder.EndRow.
func (m *Message) ButtonRow() *RowBuilder {
	return &RowBuilder{parent: m}
}

// Select starts a select block. The block is appended by
// SelectBuilder.EndSelect.
func (m *Message) Select(placeholder string, opts ...SelectOption) *SelectBuilder {
	content := defaultSelect(placeholder)
	for _, opt := range opts {
		opt(&content)
	}
	return &SelectBuilder{parent: m, content: content}
}

// Len returns the number of blocks.
func (m *Message) Len() int { return len(m.blocks) }

// Snapshot is the plain data of a message, detached from the builder.
type Snapshot struct {
	Blocks  []Block  `json:"messages"`
	Options *Options `json:"options,omitempty"`
}

// Snapshot returns a deep copy of the blocks and options. Later changes to
// the message do not affect it.
func (m *Message) Snapshot() Snapshot {
	blocks := make([]Block, len(m.blocks))
	for i, b := range m.blocks {
		blocks[i] = b.clone()
	}
	return Snapshot{Blocks: blocks, Options: m.options.clone()}
}

// Restore returns a message holding a copy of s, ready for further calls.
func Restore(s Snapshot) *Message {
	m := New()
	for _, b := range s.Blocks {
		m.blocks = append(m.blocks, b.clone())
	}
	m.options = s.Options.clone()
	return m
}

// ButtonItem is anything that can be turned into a simple button: a Label
// (text and value are the label) or a Button.
type ButtonItem interface {
	button() Button
}

// Label is a plain string item for Buttons and SelectBuilder.Add.
type Label string

func (l Label) button() Button {
	return Button{Text: string(l), Value: string(l)}
}

// Extra fields of b are dropped, as with Label.
func (b Button) button() Button {
	if b.Value == "" {
		b.Value = b.Text
	}
	return Button{Text: b.Text, Value: b.Value}
}

func toButtons(items []ButtonItem) []Button {
	buttons := make([]Button, 0, len(items))
	for _, it := range items {
		buttons = append(buttons, it.button())
	}
	return buttons
}
