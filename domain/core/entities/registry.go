package entities

import (
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Slot says who writes a data field.
type Slot string

const (
	// SlotPrimitive fields are authored by the user.
	SlotPrimitive Slot = "primitive"
	// SlotGenerated fields are written only by a successful generation.
	SlotGenerated Slot = "generated"
)

// FieldSpec declares one recognised field of a node kind's data record.
type FieldSpec struct {
	Name     string
	Slot     Slot
	Required bool
}

func primitive(name string) FieldSpec { return FieldSpec{Name: name, Slot: SlotPrimitive} }
func generated(name string) FieldSpec { return FieldSpec{Name: name, Slot: SlotGenerated} }

var sourceField = FieldSpec{Name: "source", Slot: SlotPrimitive, Required: true}

var registry = map[Kind][]FieldSpec{
	KindText: {
		sourceField, primitive("text"), primitive("content"), primitive("instructions"), primitive("model"),
		generated("generated"),
	},
	KindImage: {
		sourceField, primitive("content"), primitive("instructions"), primitive("model"), primitive("size"),
		generated("generated"), generated("description"),
	},
	KindAudio: {
		sourceField, primitive("content"), primitive("instructions"), primitive("model"), primitive("voice"),
		generated("generated"), generated("transcript"),
	},
	KindVideo: {
		sourceField, primitive("content"), primitive("instructions"), primitive("model"),
		generated("generated"),
	},
	KindCode: {
		sourceField, primitive("content"), primitive("instructions"), primitive("model"),
		generated("generated"),
	},
	KindFile:  {primitive("content")},
	KindTweet: {primitive("content")},
	KindDrop:  {primitive("isSource")},
}

// Fields returns the declared data fields for a kind.
func Fields(kind Kind) ([]FieldSpec, error) {
	specs, ok := registry[kind]
	if !ok {
		return nil, pkgerrors.NewValidationErrorf("unknown node type %q", kind)
	}
	out := make([]FieldSpec, len(specs))
	copy(out, specs)
	return out, nil
}

// FieldSlot looks up the slot of a named field. The second result is false
// when the kind does not declare the field.
func FieldSlot(kind Kind, name string) (Slot, bool) {
	for _, f := range registry[kind] {
		if f.Name == name {
			return f.Slot, true
		}
	}
	return "", false
}

// DefaultPayload returns the empty data record for a kind.
func DefaultPayload(kind Kind) (Payload, error) {
	switch kind {
	case KindText:
		return &TextData{Source: SourcePrimitive}, nil
	case KindImage:
		return &ImageData{Source: SourcePrimitive}, nil
	case KindAudio:
		return &AudioData{Source: SourcePrimitive}, nil
	case KindVideo:
		return &VideoData{Source: SourcePrimitive}, nil
	case KindCode:
		return &CodeData{Source: SourcePrimitive}, nil
	case KindFile:
		return &FileData{}, nil
	case KindTweet:
		return &TweetData{}, nil
	case KindDrop:
		return &DropData{}, nil
	}
	return nil, pkgerrors.NewValidationErrorf("unknown node type %q", kind)
}
