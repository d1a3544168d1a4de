package progress

import (
	"context"
	"testing"
	"time"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

func loaderFor(task *a2a.Task) SnapshotLoader {
	return func(ctx context.Context, taskID string) (*a2a.Task, error) {
		return task, nil
	}
}

func TestSubscribeEmitsSnapshotFirst(t *testing.T) {
	task := &a2a.Task{ID: "t1", Status: a2a.TaskRunning}
	hub := New(loaderFor(task), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := hub.Subscribe(ctx, "t1")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case event := <-events:
		if event.Kind != EventSnapshot {
			t.Errorf("first event kind = %s, want snapshot", event.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot event")
	}
}

func TestSubscribeToTerminalTaskClosesImmediately(t *testing.T) {
	task := &a2a.Task{ID: "t1", Status: a2a.TaskCompleted}
	hub := New(loaderFor(task), nil)

	events, err := hub.Subscribe(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	<-events // snapshot
	if _, open := <-events; open {
		t.Error("channel stayed open after a terminal-state snapshot")
	}
}

func TestPublishStatusDeliversThenClosesOnTerminal(t *testing.T) {
	running := &a2a.Task{ID: "t1", Status: a2a.TaskRunning}
	hub := New(loaderFor(running), nil)

	ctx := context.Background()
	events, err := hub.Subscribe(ctx, "t1")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	<-events // snapshot

	completed := &a2a.Task{ID: "t1", Status: a2a.TaskCompleted}
	hub.PublishStatus(ctx, completed)

	select {
	case event, open := <-events:
		if !open {
			t.Fatal("channel closed before terminal event delivered")
		}
		if event.Kind != EventStatus || event.Task.Status != a2a.TaskCompleted {
			t.Errorf("event = %+v, want terminal status event", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for terminal event")
	}

	select {
	case _, open := <-events:
		if open {
			t.Error("channel not closed after terminal event")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
