package event

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var content, all, mouse int
	if _, err := bus.Subscribe(TopicContentChanged, func(context.Context, Event) { content++ }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if _, err := bus.Subscribe("**", func(context.Context, Event) { all++ }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if _, err := bus.Subscribe(TopicMouseDown, func(context.Context, Event) { mouse++ }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	n := bus.Publish(ctx, Event{Topic: TopicContentChanged})
	if n != 2 {
		t.Errorf("expected 2 deliveries, got %d", n)
	}
	if content != 1 || all != 1 || mouse != 0 {
		t.Errorf("unexpected counts content=%d all=%d mouse=%d", content, all, mouse)
	}

	stats := bus.Stats()
	if stats.Published != 1 || stats.Delivered != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBusPayloadRoundTrip(t *testing.T) {
	bus := NewBus()

	var got MouseDown
	_, err := bus.Subscribe(TopicMouseDown, func(_ context.Context, ev Event) {
		got = ev.Payload.(MouseDown)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	bus.Publish(context.Background(), Event{
		Topic:   TopicMouseDown,
		Payload: MouseDown{Line: 6, Target: TargetGutterFoldMarkers},
	})

	if got.Line != 6 || got.Target != TargetGutterFoldMarkers {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestBusSubscribeValidation(t *testing.T) {
	bus := NewBus()

	if _, err := bus.Subscribe("", func(context.Context, Event) {}); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
	if _, err := bus.Subscribe(TopicModelChanged, nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
}

func TestSubscriptionCancelIsIdempotent(t *testing.T) {
	bus := NewBus()

	calls := 0
	sub, err := bus.Subscribe(TopicModelChanged, func(context.Context, Event) { calls++ })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if sub.ID() == "" {
		t.Error("subscription should have an ID")
	}

	sub.Cancel()
	sub.Cancel()

	if sub.IsActive() {
		t.Error("subscription should be inactive after Cancel")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}

	bus.Publish(context.Background(), Event{Topic: TopicModelChanged})
	if calls != 0 {
		t.Errorf("cancelled handler was called %d times", calls)
	}
}

func TestBusHandlerCancelledDuringDelivery(t *testing.T) {
	bus := NewBus()

	var second *Subscription
	secondCalls := 0
	_, err := bus.Subscribe(TopicModelChanged, func(context.Context, Event) {
		second.Cancel()
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	second, err = bus.Subscribe(TopicModelChanged, func(context.Context, Event) { secondCalls++ })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	bus.Publish(context.Background(), Event{Topic: TopicModelChanged})
	if secondCalls != 0 {
		t.Errorf("handler cancelled mid-delivery was called %d times", secondCalls)
	}
}

func TestBusSubscribeDuringDelivery(t *testing.T) {
	bus := NewBus()

	late := 0
	_, err := bus.Subscribe(TopicModeChanged, func(context.Context, Event) {
		_, _ = bus.Subscribe(TopicModeChanged, func(context.Context, Event) { late++ })
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	bus.Publish(context.Background(), Event{Topic: TopicModeChanged})
	if late != 0 {
		t.Errorf("subscription added during delivery should not receive that event, got %d", late)
	}
	if bus.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", bus.SubscriberCount())
	}
}
