package generation

import (
	"fmt"
	"sort"

	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Capability is a class of model invocation.
type Capability string

const (
	CapabilityText          Capability = "text"
	CapabilityImage         Capability = "image"
	CapabilitySpeech        Capability = "speech"
	CapabilityTranscription Capability = "transcription"
	CapabilityVision        Capability = "vision"
	CapabilityVideo         Capability = "video"
)

var capabilities = []Capability{
	CapabilityText, CapabilityImage, CapabilitySpeech,
	CapabilityTranscription, CapabilityVision, CapabilityVideo,
}

// ParseCapability resolves a capability name.
func ParseCapability(name string) (Capability, error) {
	for _, c := range capabilities {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", name)
}

// Binary reports whether the capability produces media rather than text.
func (c Capability) Binary() bool {
	switch c {
	case CapabilityImage, CapabilitySpeech, CapabilityVideo:
		return true
	}
	return false
}

// CapabilityFor maps a node kind and task to the model class that serves it.
func CapabilityFor(kind entities.Kind, task entities.Task) (Capability, error) {
	switch {
	case task == entities.TaskGenerate && (kind == entities.KindText || kind == entities.KindCode):
		return CapabilityText, nil
	case task == entities.TaskGenerate && kind == entities.KindImage:
		return CapabilityImage, nil
	case task == entities.TaskDescribe && kind == entities.KindImage:
		return CapabilityVision, nil
	case task == entities.TaskGenerate && kind == entities.KindAudio:
		return CapabilitySpeech, nil
	case task == entities.TaskTranscribe && kind == entities.KindAudio:
		return CapabilityTranscription, nil
	case task == entities.TaskGenerate && kind == entities.KindVideo:
		return CapabilityVideo, nil
	}
	return "", pkgerrors.NewValidationErrorf("%s nodes cannot run %s", kind, task).WithCode("UNSUPPORTED_TASK")
}

// ModelDescriptor binds a model identifier to the handle that invokes it.
type ModelDescriptor struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Provider   string     `json:"provider"`
	Capability Capability `json:"capability"`
	Default    bool       `json:"default,omitempty"`
	Invoker    Invoker    `json:"-"`
}

type catalogKey struct {
	capability Capability
	id         string
}

// Catalog is an immutable set of model descriptors. Build a new catalog to
// change the set; never mutate one in place.
type Catalog struct {
	byKey    map[catalogKey]ModelDescriptor
	defaults map[Capability]string
	ordered  []ModelDescriptor
}

// NewCatalog validates and indexes descriptors. The same id may be
// registered once per capability.
func NewCatalog(descriptors ...ModelDescriptor) (*Catalog, error) {
	c := &Catalog{
		byKey:    make(map[catalogKey]ModelDescriptor, len(descriptors)),
		defaults: make(map[Capability]string),
		ordered:  make([]ModelDescriptor, 0, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.ID == "" {
			return nil, fmt.Errorf("model descriptor requires an id")
		}
		if _, err := ParseCapability(string(d.Capability)); err != nil {
			return nil, fmt.Errorf("model %s: %w", d.ID, err)
		}
		if d.Invoker == nil {
			return nil, fmt.Errorf("model %s has no invoker", d.ID)
		}
		key := catalogKey{capability: d.Capability, id: d.ID}
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("model %s registered twice for %s", d.ID, d.Capability)
		}
		if d.Default {
			if prev, ok := c.defaults[d.Capability]; ok {
				return nil, fmt.Errorf("models %s and %s are both default for %s", prev, d.ID, d.Capability)
			}
			c.defaults[d.Capability] = d.ID
		}
		if d.Label == "" {
			d.Label = d.ID
		}
		c.byKey[key] = d
		c.ordered = append(c.ordered, d)
	}
	return c, nil
}

// Lookup finds a model by capability and id.
func (c *Catalog) Lookup(capability Capability, id string) (ModelDescriptor, bool) {
	d, ok := c.byKey[catalogKey{capability: capability, id: id}]
	return d, ok
}

// Default returns the capability's default model: the one flagged default,
// otherwise the first registered.
func (c *Catalog) Default(capability Capability) (ModelDescriptor, bool) {
	if id, ok := c.defaults[capability]; ok {
		return c.Lookup(capability, id)
	}
	for _, d := range c.ordered {
		if d.Capability == capability {
			return d, true
		}
	}
	return ModelDescriptor{}, false
}

// List returns every descriptor grouped by capability, in registration order
// within each group.
func (c *Catalog) List() []ModelDescriptor {
	out := make([]ModelDescriptor, len(c.ordered))
	copy(out, c.ordered)
	rank := make(map[Capability]int, len(capabilities))
	for i, cp := range capabilities {
		rank[cp] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].Capability] < rank[out[j].Capability]
	})
	return out
}

// Len returns the number of registered descriptors.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
