package message

import "encoding/json"

// CopyAsType rebuilds source's state as a new instance of template's concrete
// type. This is the lossy structural coercion used when a callback typed for
// one message type receives a different variant.
//
// Semantics: best-effort, field-name matched (via the types' JSON shapes).
// Fields of source with no counterpart in the target type are dropped
// silently; fields whose types conflict fail with *CoercionError. The
// template is only a type witness — its field values are never read, and the
// returned instance shares no state with it.
func CopyAsType(template, source Message) (Message, error) {
	target, err := DefaultInstance(template.TypeName())
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(source)
	if err != nil {
		return nil, &CoercionError{From: source.TypeName(), To: template.TypeName(), Err: err}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, &CoercionError{From: source.TypeName(), To: template.TypeName(), Err: err}
	}
	return target, nil
}
