// Package event provides the synchronous event bus that connects the editor
// host to its features.
//
// Events use hierarchical topics with dot notation:
//
//	editor.model.changed    - The buffer was replaced or detached
//	editor.mode.changed     - The buffer was re-analyzed (language or tab size)
//	buffer.content.changed  - Text was inserted, deleted or replaced
//	editor.mouse.down       - A pointer press landed on the editor
//
// Subscriptions may use wildcards: "*" matches exactly one segment and "**"
// matches zero or more trailing segments.
//
// # Delivery
//
// Publish invokes matching handlers synchronously, in subscription order, on
// the publisher's goroutine. The editor always publishes from its event loop,
// so handlers observe the single-threaded model the folding feature relies on.
//
// Basic usage:
//
//	bus := event.NewBus()
//	sub, err := bus.Subscribe(event.TopicContentChanged, func(ctx context.Context, ev event.Event) {
//	    // react to the edit
//	})
//	if err != nil {
//	    return err
//	}
//	defer sub.Cancel()
//
//	bus.Publish(ctx, event.Event{Topic: event.TopicContentChanged})
package event
