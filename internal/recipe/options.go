package recipe

import (
	"fmt"

	"github.com/lojasmm/chatmsg/message"
)

func applyRequestTransfer(m *message.Message, s Step) error {
	if err := checkKeys(s, "value"); err != nil {
		return err
	}
	v, ok := numberArg(s["value"])
	if !ok {
		return message.NewValidationError("RequestTransfer", message.ErrInvalidValue, fmt.Sprintf("%v is not a number", s["value"]))
	}
	return m.RequestTransfer(v)
}

func applyRequestLocation(m *message.Message, s Step) error {
	if err := checkKeys(s); err != nil {
		return err
	}
	m.RequestLocation()
	return nil
}

func applyNextStateAccess(m *message.Message, s Step) error {
	if err := checkKeys(s, "state"); err != nil {
		return err
	}
	state, ok := s["state"].(string)
	if !ok {
		return message.NewValidationError("NextStateAccess", message.ErrInvalidStateAccess, fmt.Sprintf("got %v", s["state"]))
	}
	return m.NextStateAccess(message.StateAccess(state))
}

func applyUpdateOnEvent(m *message.Message, s Step) error {
	if err := checkKeys(s, "event"); err != nil {
		return err
	}
	name, ok := s["event"].(string)
	if !ok {
		return message.NewValidationError("UpdateOnEvent", message.ErrInvalidEventName, "event name must be a string")
	}
	return m.UpdateOnEvent(name)
}

func applyUpdateOnTag(m *message.Message, s Step) error {
	if err := checkKeys(s, "tag"); err != nil {
		return err
	}
	name, ok := s["tag"].(string)
	if !ok {
		return message.NewValidationError("UpdateOnTag", message.ErrInvalidTagName, "tag name must be a string")
	}
	return m.UpdateOnTag(name)
}

func applyRequestEncryption(m *message.Message, s Step) error {
	if err := checkKeys(s, "key", "items"); err != nil {
		return err
	}
	enc, err := encryption("RequestEncryption", s)
	if err != nil {
		return err
	}
	return m.RequestEncryption(enc.Key, enc.Items)
}

// encryption reads {key: string|{key, algo, params}, items?: [string]}.
func encryption(op string, obj map[string]any) (*message.Encryption, error) {
	var enc message.Encryption
	switch k := obj["key"].(type) {
	case string:
		enc.Key = message.Key(k)
	default:
		kobj, ok := asObject(k)
		if !ok {
			return nil, message.NewValidationError(op, message.ErrInvalidEncryptionKey, "key must be a string or an object")
		}
		if err := remarshal(kobj, &enc.Key, true); err != nil {
			return nil, message.NewValidationError(op, message.ErrInvalidEncryptionKey, err.Error())
		}
	}
	if enc.Key.Key == "" {
		return nil, message.NewValidationError(op, message.ErrInvalidEncryptionKey, "key is empty")
	}

	if raw, ok := obj["items"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, message.NewValidationError(op, message.ErrInvalidEncryptionItems, fmt.Sprintf("got %T", raw))
		}
		enc.Items = make([]string, len(list))
		for i, v := range list {
			str, ok := v.(string)
			if !ok {
				return nil, message.NewValidationError(op, message.ErrInvalidEncryptionItems, fmt.Sprintf("items[%d] is %T", i, v))
			}
			enc.Items[i] = str
		}
	}
	return &enc, nil
}

// applyOption merges a raw options patch. Fields that the typed setters
// validate are checked the same way here; unknown fields are rejected.
func applyOption(m *message.Message, s Step) error {
	if err := checkKeys(s, "patch"); err != nil {
		return err
	}
	raw, err := objectArg(s, "patch")
	if err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("%w: missing required argument %q", ErrInvalidStep, "patch")
	}

	var patch message.Options
	rest := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case "value":
			n, ok := numberArg(v)
			if !ok || !(n > 0) {
				return message.NewValidationError("Option", message.ErrInvalidValue, fmt.Sprintf("%v", v))
			}
			patch.Value = n
		case "nextStateAccess":
			str, ok := v.(string)
			if !ok {
				return message.NewValidationError("Option", message.ErrInvalidStateAccess, fmt.Sprintf("got %v", v))
			}
			patch.NextStateAccess = message.StateAccess(str)
		case "updateOnEvent":
			str, ok := v.(string)
			if !ok || str == "" {
				return message.NewValidationError("Option", message.ErrInvalidEventName, "event name must be a non-empty string")
			}
			patch.UpdateOnEvent = str
		case "updateOnTag":
			str, ok := v.(string)
			if !ok || str == "" {
				return message.NewValidationError("Option", message.ErrInvalidTagName, "tag name must be a non-empty string")
			}
			patch.UpdateOnTag = str
		case "encrypt":
			obj, ok := asObject(v)
			if !ok {
				return message.NewValidationError("Option", message.ErrInvalidEncryptionKey, "encrypt must be an object")
			}
			if err := checkKeys(obj, "key", "items"); err != nil {
				return err
			}
			if patch.Encrypt, err = encryption("Option", obj); err != nil {
				return err
			}
		default:
			rest[k] = v
		}
	}

	// location, next and anything unknown go through strict decoding.
	var decoded message.Options
	if err := remarshal(rest, &decoded, true); err != nil {
		return err
	}
	patch.Location = decoded.Location
	patch.Next = decoded.Next
	return m.Option(patch)
}
