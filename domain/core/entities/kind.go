package entities

import (
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Kind is the closed set of node types a canvas may contain.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindCode  Kind = "code"
	KindFile  Kind = "file"
	KindTweet Kind = "tweet"
	KindDrop  Kind = "drop"
)

var allKinds = []Kind{KindText, KindImage, KindAudio, KindVideo, KindCode, KindFile, KindTweet, KindDrop}

// Kinds returns every registered node kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind resolves a type tag, rejecting anything outside the registry.
func ParseKind(tag string) (Kind, error) {
	for _, k := range allKinds {
		if string(k) == tag {
			return k, nil
		}
	}
	return "", pkgerrors.NewValidationErrorf("unknown node type %q", tag).WithCode("UNKNOWN_NODE_TYPE")
}

func (k Kind) String() string {
	return string(k)
}

// Tasks lists the generation tasks a node of this kind can run.
// Primitive-only kinds return nil.
func (k Kind) Tasks() []Task {
	switch k {
	case KindText, KindCode, KindVideo:
		return []Task{TaskGenerate}
	case KindImage:
		return []Task{TaskGenerate, TaskDescribe}
	case KindAudio:
		return []Task{TaskGenerate, TaskTranscribe}
	default:
		return nil
	}
}

// Supports reports whether the kind can run the given task.
func (k Kind) Supports(task Task) bool {
	for _, t := range k.Tasks() {
		if t == task {
			return true
		}
	}
	return false
}

// Source distinguishes user-authored nodes from nodes fed by a model.
type Source string

const (
	SourcePrimitive Source = "primitive"
	SourceTransform Source = "transform"
)

func (s Source) valid() bool {
	return s == SourcePrimitive || s == SourceTransform
}

// Task names one kind of model work a node can request.
type Task string

const (
	TaskGenerate   Task = "generate"
	TaskDescribe   Task = "describe"
	TaskTranscribe Task = "transcribe"
)

// ParseTask resolves a task name; empty means generate.
func ParseTask(name string) (Task, error) {
	switch Task(name) {
	case "", TaskGenerate:
		return TaskGenerate, nil
	case TaskDescribe, TaskTranscribe:
		return Task(name), nil
	}
	return "", pkgerrors.NewValidationErrorf("unknown generation task %q", name)
}
