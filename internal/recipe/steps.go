package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lojasmm/chatmsg/message"
)

func applyText(m *message.Message, s Step) error {
	content, fields, err := contentStep(s)
	if err != nil {
		return err
	}
	m.Text(content, fields...)
	return nil
}

func applyHTML(m *message.Message, s Step) error {
	content, fields, err := contentStep(s)
	if err != nil {
		return err
	}
	m.HTML(content, fields...)
	return nil
}

func contentStep(s Step) (string, []message.Fields, error) {
	if err := checkKeys(s, "content", "fields"); err != nil {
		return "", nil, err
	}
	content, err := stringArg(s, "content")
	if err != nil {
		return "", nil, err
	}
	fields, err := fieldsArg(s)
	if err != nil {
		return "", nil, err
	}
	return content, optional(fields), nil
}

func applyLoading(m *message.Message, s Step) error {
	if err := checkKeys(s, "fields"); err != nil {
		return err
	}
	fields, err := fieldsArg(s)
	if err != nil {
		return err
	}
	m.Loading(optional(fields)...)
	return nil
}

func applyButton(m *message.Message, s Step) error {
	if err := checkKeys(s, "text", "value", "fields"); err != nil {
		return err
	}
	text, err := stringArg(s, "text")
	if err != nil {
		return err
	}
	value, err := optionalStringArg(s, "value")
	if err != nil {
		return err
	}
	fields, err := fieldsArg(s)
	if err != nil {
		return err
	}
	m.Button(text, value, optional(fields)...)
	return nil
}

func applyButtons(m *message.Message, s Step) error {
	if err := checkKeys(s, "items"); err != nil {
		return err
	}
	items, err := buttonItems(s, "items")
	if err != nil {
		return err
	}
	m.Buttons(items...)
	return nil
}

// buttonItems reads a list whose entries are strings or {text, value}.
func buttonItems(s Step, key string) ([]message.ButtonItem, error) {
	list, err := listArg(s, key)
	if err != nil {
		return nil, err
	}
	items := make([]message.ButtonItem, 0, len(list))
	for i, v := range list {
		item, err := buttonItem(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func buttonItem(v any) (message.ButtonItem, error) {
	if str, ok := v.(string); ok {
		return message.Label(str), nil
	}
	obj, ok := asObject(v)
	if !ok {
		return nil, fmt.Errorf("%w: button must be a string or an object", ErrInvalidStep)
	}
	text, err := stringArg(obj, "text")
	if err != nil {
		return nil, err
	}
	value, err := optionalStringArg(obj, "value")
	if err != nil {
		return nil, err
	}
	return message.Button{Text: text, Value: value}, nil
}

func applyInput(m *message.Message, s Step) error {
	if err := checkKeys(s, "placeholder", "fields"); err != nil {
		return err
	}
	placeholder, err := optionalStringArg(s, "placeholder")
	if err != nil {
		return err
	}
	fields, err := fieldsArg(s)
	if err != nil {
		return err
	}
	m.Input(placeholder, optional(fields)...)
	return nil
}

func applyPush(m *message.Message, s Step) error {
	if err := checkKeys(s, "block"); err != nil {
		return err
	}
	obj, err := objectArg(s, "block")
	if err != nil {
		return err
	}
	if obj == nil {
		return fmt.Errorf("%w: missing required argument %q", ErrInvalidStep, "block")
	}
	var b message.Block
	if err := remarshal(obj, &b, false); err != nil {
		return err
	}
	m.Push(b)
	return nil
}

// applyButtonRow reads
//
//	buttons: ["plain", {text, value: string|object, next: string|object}, ...]
func applyButtonRow(m *message.Message, s Step) error {
	if err := checkKeys(s, "buttons"); err != nil {
		return err
	}
	list, err := listArg(s, "buttons")
	if err != nil {
		return err
	}
	row := m.ButtonRow()
	for i, v := range list {
		if str, ok := v.(string); ok {
			row.Buttons(message.Label(str))
			continue
		}
		obj, ok := asObject(v)
		if !ok {
			return fmt.Errorf("buttons[%d]: %w: button must be a string or an object", i, ErrInvalidStep)
		}
		text, opts, err := rowButton(obj)
		if err != nil {
			return fmt.Errorf("buttons[%d]: %w", i, err)
		}
		row.Button(text, opts...)
	}
	_, err = row.EndRow()
	return err
}

func rowButton(obj map[string]any) (string, []message.ButtonOption, error) {
	if err := checkKeys(obj, "text", "value", "next"); err != nil {
		return "", nil, err
	}
	text, err := stringArg(obj, "text")
	if err != nil {
		return "", nil, err
	}

	var opts []message.ButtonOption
	switch v := obj["value"].(type) {
	case nil:
	case string:
		opts = append(opts, message.Value(v))
	default:
		fields, ok := asObject(v)
		if !ok {
			return "", nil, fmt.Errorf("%w: value must be a string or an object", ErrInvalidStep)
		}
		opts = append(opts, message.Extra(fields))
	}

	switch v := obj["next"].(type) {
	case nil:
	case string:
		opts = append(opts, message.Next(message.StateAccess(v)))
	default:
		nextObj, ok := asObject(v)
		if !ok {
			return "", nil, fmt.Errorf("%w: next must be a string or an object", ErrInvalidStep)
		}
		var next message.NextState
		if err := remarshal(nextObj, &next, true); err != nil {
			return "", nil, err
		}
		opts = append(opts, message.NextRule(next))
	}
	return text, opts, nil
}

// applySelect reads
//
//	placeholder: string
//	options: {searchselect, multipleselect, button: {icon, label}, options: [...], ...fields}
//	add: [item | [item, ...], ...]   one entry per Add call
func applySelect(m *message.Message, s Step) error {
	if err := checkKeys(s, "placeholder", "options", "add"); err != nil {
		return err
	}
	placeholder, err := optionalStringArg(s, "placeholder")
	if err != nil {
		return err
	}
	opts, err := selectOptions(s)
	if err != nil {
		return err
	}
	calls, err := listArg(s, "add")
	if err != nil {
		return err
	}

	sel := m.Select(placeholder, opts...)
	for i, call := range calls {
		raw, ok := call.([]any)
		if !ok {
			raw = []any{call}
		}
		items := make([]message.Item, 0, len(raw))
		for j, v := range raw {
			item, err := selectItem(v)
			if err != nil {
				return fmt.Errorf("add[%d][%d]: %w", i, j, err)
			}
			items = append(items, item)
		}
		sel.Add(items...)
	}
	_, err = sel.EndSelect()
	return err
}

func selectOptions(s Step) ([]message.SelectOption, error) {
	obj, err := objectArg(s, "options")
	if err != nil || obj == nil {
		return nil, err
	}

	var opts []message.SelectOption
	extra := message.Fields{}
	for k, v := range obj {
		switch k {
		case "searchselect", "multipleselect":
			b, _, err := boolArg(obj, k)
			if err != nil {
				return nil, err
			}
			if k == "searchselect" {
				opts = append(opts, message.Searchable(b))
			} else {
				opts = append(opts, message.Multiple(b))
			}
		case "button":
			var btn message.SelectButton
			btnObj, ok := asObject(v)
			if !ok {
				return nil, fmt.Errorf("%w: options.button must be an object", ErrInvalidStep)
			}
			if err := remarshal(btnObj, &btn, true); err != nil {
				return nil, err
			}
			opts = append(opts, message.ConfirmButton(btn.Icon, btn.Label))
		case "options":
			var preset []message.Choice
			if err := remarshal(v, &preset, false); err != nil {
				return nil, err
			}
			opts = append(opts, message.Preset(preset...))
		case "placeholder":
			return nil, fmt.Errorf("%w: set the placeholder with the placeholder argument", ErrInvalidStep)
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		opts = append(opts, message.SelectFields(extra))
	}
	return opts, nil
}

func selectItem(v any) (message.Item, error) {
	if str, ok := v.(string); ok {
		return message.Label(str), nil
	}
	obj, ok := asObject(v)
	if !ok {
		return nil, fmt.Errorf("%w: select item must be a string or an object", ErrInvalidStep)
	}
	var c message.Choice
	if err := remarshal(obj, &c, false); err != nil {
		return nil, err
	}
	return c, nil
}

func optional(f message.Fields) []message.Fields {
	if f == nil {
		return nil
	}
	return []message.Fields{f}
}

// remarshal converts a decoded JSON/YAML value into dst through JSON.
func remarshal(v any, dst any, strict bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStep, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStep, err)
	}
	return nil
}
