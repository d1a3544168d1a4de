package a2a

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TaskStatus
		want     bool
	}{
		{TaskPending, TaskRunning, true},
		{TaskRunning, TaskCompleted, true},
		{TaskRunning, TaskFailed, true},
		{TaskRunning, TaskCancelled, true},
		{TaskPending, TaskCompleted, false},
		{TaskPending, TaskCancelled, false},
		{TaskCompleted, TaskRunning, false},
		{TaskFailed, TaskRunning, false},
		{TaskCancelled, TaskRunning, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []TaskStatus{TaskCompleted, TaskFailed, TaskCancelled} {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
	}
	for _, s := range []TaskStatus{TaskPending, TaskRunning} {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
}

func TestTaskProgress(t *testing.T) {
	cases := []struct {
		current, total int
		want            int
	}{
		{0, 5, 0},
		{1, 5, 20},
		{5, 5, 100},
		{0, 0, 100},
	}
	for _, c := range cases {
		task := &Task{CurrentStep: c.current, TotalSteps: c.total}
		if got := task.Progress(); got != c.want {
			t.Errorf("Progress() with %d/%d = %d, want %d", c.current, c.total, got, c.want)
		}
	}
}

func TestTaskNextAgent(t *testing.T) {
	task := &Task{WorkflowAgents: []string{"import", "validation"}, CurrentStep: 0}
	agent, ok := task.NextAgent()
	if !ok || agent != "import" {
		t.Fatalf("NextAgent() = %q, %v, want import, true", agent, ok)
	}

	task.CurrentStep = 2
	if _, ok := task.NextAgent(); ok {
		t.Fatal("NextAgent() ok = true after workflow exhausted")
	}
}

func TestTaskCloneIsIndependent(t *testing.T) {
	task := &Task{
		WorkflowAgents: []string{"import"},
		Context:        map[string]any{"importId": "abc"},
	}
	clone := task.Clone()
	clone.Context["importId"] = "mutated"
	clone.WorkflowAgents[0] = "mutated"

	if task.Context["importId"] != "abc" {
		t.Error("mutating clone's Context leaked into original")
	}
	if task.WorkflowAgents[0] != "import" {
		t.Error("mutating clone's WorkflowAgents leaked into original")
	}
}
