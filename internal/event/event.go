package event

import "context"

// Event is a single notification delivered through the bus.
type Event struct {
	Topic   Topic
	Payload any
	Source  string
}

// Handler processes an event.
type Handler func(ctx context.Context, ev Event)

// ModelChanged is the payload of TopicModelChanged.
type ModelChanged struct {
	// Attached is false when the editor no longer has a buffer.
	Attached bool
}

// ModeChanged is the payload of TopicModeChanged.
type ModeChanged struct {
	Mode    string
	TabSize int
}

// ContentChanged is the payload of TopicContentChanged.
type ContentChanged struct {
	Revision uint64
	// StartLine and EndLine bound the affected lines (1-based, inclusive)
	// in the buffer after the edit.
	StartLine int
	EndLine   int
}

// MouseTarget classifies where a pointer press landed.
type MouseTarget uint8

const (
	TargetUnknown MouseTarget = iota
	TargetText
	TargetGutterLineNumbers
	TargetGutterFoldMarkers
)

// String returns a string representation of the target.
func (t MouseTarget) String() string {
	switch t {
	case TargetText:
		return "text"
	case TargetGutterLineNumbers:
		return "gutter-line-numbers"
	case TargetGutterFoldMarkers:
		return "gutter-fold-markers"
	default:
		return "unknown"
	}
}

// MouseDown is the payload of TopicMouseDown.
type MouseDown struct {
	// Line is the 1-based buffer line under the pointer.
	Line   int
	Column int
	Target MouseTarget
}
