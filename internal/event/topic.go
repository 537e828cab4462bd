package event

import "strings"

// Topic represents a hierarchical event type using dot notation.
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more trailing segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// Editor and buffer topics.
const (
	// TopicModelChanged is published when the editor's buffer is replaced or detached.
	TopicModelChanged Topic = "editor.model.changed"

	// TopicModeChanged is published when the buffer's mode (language, tab size) changes.
	TopicModeChanged Topic = "editor.mode.changed"

	// TopicContentChanged is published after every text edit.
	TopicContentChanged Topic = "buffer.content.changed"

	// TopicMouseDown is published when a pointer press lands on the editor.
	TopicMouseDown Topic = "editor.mouse.down"
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsValid reports whether the topic is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether the concrete topic t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	for i, p := range pattern {
		if p == WildcardMulti {
			// Only meaningful as the last segment
			return i == len(pattern)-1
		}
		if i >= len(topic) {
			return false
		}
		if p != WildcardSingle && p != topic[i] {
			return false
		}
	}
	return len(topic) == len(pattern)
}
