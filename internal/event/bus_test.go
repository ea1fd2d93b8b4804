package event

import (
	"testing"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe("phase.started", func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var received Event
	bus.Subscribe("phase.started", func(e Event) {
		received = e
	})

	bus.Publish(NewPhaseStartedEvent("drafting"))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	if received.EventType() != "phase.started" {
		t.Errorf("Expected event type 'phase.started', got %q", received.EventType())
	}
	started, ok := received.(PhaseStartedEvent)
	if !ok {
		t.Fatalf("Expected PhaseStartedEvent, got %T", received)
	}
	if started.Phase != "drafting" {
		t.Errorf("Expected phase 'drafting', got %q", started.Phase)
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe("other.event", func(e Event) {
		t.Error("Handler should not be called for non-matching event type")
	})

	// Must not panic and must not call the handler.
	bus.Publish(NewPhaseEndedEvent("judging"))
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var types []string
	bus.SubscribeAll(func(e Event) {
		types = append(types, e.EventType())
	})

	bus.Publish(NewDraftCompletedEvent("openai", false))
	bus.Publish(NewReviewCompletedEvent("openai", "gemini", true, 1))
	bus.Publish(NewWinnerSelectedEvent("openai", true))

	expected := []string{"draft.completed", "review.completed", "winner.selected"}
	if len(types) != len(expected) {
		t.Fatalf("Expected %d events, got %d", len(expected), len(types))
	}
	for i, want := range expected {
		if types[i] != want {
			t.Errorf("Event %d: expected %q, got %q", i, want, types[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe("judge.completed", func(e Event) {
		called = true
	})

	if removed := bus.Unsubscribe(id); !removed {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after unsubscribe, got %d", bus.SubscriptionCount())
	}

	bus.Publish(NewJudgeCompletedEvent("xai", false, 2))
	if called {
		t.Error("Handler should not be called after unsubscribe")
	}

	if removed := bus.Unsubscribe("sub-999"); removed {
		t.Error("Unsubscribe of unknown ID should return false")
	}
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe("phase.started", func(e Event) {
		panic("bad handler")
	})

	called := false
	bus.Subscribe("phase.started", func(e Event) {
		called = true
	})

	bus.Publish(NewPhaseStartedEvent("revision"))

	if !called {
		t.Error("Second handler should run despite the first panicking")
	}
}
