package event

import (
	"errors"
	"testing"

	"github.com/dshills/osk/internal/logging"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"config.reloaded", "config.reloaded", true},
		{"config.reloaded", "config.*", true},
		{"config.reloaded", "*", false},
		{"config.reloaded", "**", true},
		{"a.b.c", "a.**", true},
		{"a", "a.**", true},
		{"a.b.c", "a.*.c", true},
		{"a.b.c", "a.*", false},
		{"snippet.edit", "config.*", false},
	}
	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestTopicIsValid(t *testing.T) {
	for _, tp := range []Topic{"", ".a", "a.", "a..b"} {
		if tp.IsValid() {
			t.Errorf("%q.IsValid() = true", tp)
		}
	}
	if !TopicSnippetEdit.IsValid() {
		t.Error("snippet topic should be valid")
	}
}

func TestBusPublishOrder(t *testing.T) {
	b := NewBus(logging.Discard())
	var got []string
	if _, err := b.Subscribe("config.*", func(Event) { got = append(got, "wild") }); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Subscribe(TopicConfigReloaded, func(ev Event) {
		got = append(got, "exact:"+ev.Source)
	}); err != nil {
		t.Fatal(err)
	}

	n, err := b.Publish(New(TopicConfigReloaded, Reloaded{Path: "x"}, "config"))
	if err != nil || n != 2 {
		t.Fatalf("Publish() = %d, %v", n, err)
	}
	if len(got) != 2 || got[0] != "wild" || got[1] != "exact:config" {
		t.Errorf("delivery = %v", got)
	}
}

func TestBusOnceAndUnsubscribe(t *testing.T) {
	b := NewBus(logging.Discard())
	calls := 0
	if _, err := b.Subscribe(TopicQuit, func(Event) { calls++ }, WithOnce()); err != nil {
		t.Fatal(err)
	}
	sub, _ := b.Subscribe(TopicQuit, func(Event) { calls += 10 })

	b.Emit(TopicQuit, nil, "test")
	b.Emit(TopicQuit, nil, "test")
	if calls != 21 {
		t.Errorf("calls = %d, want 21", calls)
	}

	if err := b.Unsubscribe(sub); err != nil {
		t.Fatal(err)
	}
	if err := b.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe() = %v", err)
	}
	if b.Count() != 0 {
		t.Errorf("Count() = %d", b.Count())
	}
}

func TestBusHandlerPanicIsContained(t *testing.T) {
	b := NewBus(logging.Discard())
	ran := false
	_, _ = b.Subscribe(TopicSnippetEdit, func(Event) { panic("boom") })
	_, _ = b.Subscribe(TopicSnippetEdit, func(ev Event) {
		ran = ev.Payload.(SnippetEdit).ID == 3
	})

	b.Emit(TopicSnippetEdit, SnippetEdit{ID: 3}, "keyboard")
	if !ran {
		t.Error("second handler did not run")
	}
}

func TestBusRejectsBadInput(t *testing.T) {
	b := NewBus(logging.Discard())
	if _, err := b.Subscribe("", func(Event) {}); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(\"\") = %v", err)
	}
	if _, err := b.Subscribe(TopicQuit, nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Subscribe(nil) = %v", err)
	}
	if _, err := b.Publish(Event{}); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish(empty) = %v", err)
	}
}
