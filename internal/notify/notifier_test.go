package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type recordingSender struct {
	name   string
	titles []string
	err    error
}

func (s *recordingSender) Send(_ context.Context, title, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.titles = append(s.titles, title)
	return nil
}

func (s *recordingSender) Name() string { return s.name }

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestNotifyFiltersByEvent(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, []string{"market_resolved"}, testLogger())
	ctx := context.Background()

	if err := n.Notify(ctx, "market_resolved", "resolved", "body"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := n.Notify(ctx, "bet_placed", "bet", "body"); err != nil {
		t.Fatalf("Notify filtered: %v", err)
	}

	if len(sender.titles) != 1 || sender.titles[0] != "resolved" {
		t.Errorf("delivered = %v, want [resolved]", sender.titles)
	}
}

func TestNotifyEmptyFilterAllowsAll(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, nil, testLogger())

	if err := n.Notify(context.Background(), "anything", "t", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 1 {
		t.Error("unfiltered notifier dropped the event")
	}
}

func TestDispatchContinuesPastFailedSender(t *testing.T) {
	broken := &recordingSender{name: "broken", err: errors.New("down")}
	working := &recordingSender{name: "working"}
	n := NewNotifier([]Sender{broken, working}, nil, testLogger())

	err := n.NotifyAll(context.Background(), "t", "m")
	if err == nil {
		t.Fatal("expected combined error from failed sender")
	}
	if len(working.titles) != 1 {
		t.Error("working sender skipped after earlier failure")
	}
}
