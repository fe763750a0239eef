package crew

import "testing"

func TestNewTask(t *testing.T) {
	objectives := map[string]string{
		"default":    "do the usual",
		"researcher": "dig deep and cite sources",
	}

	t.Run("persona-keyed objective", func(t *testing.T) {
		task := NewTask("researcher", objectives)
		if task.Objective != "dig deep and cite sources" {
			t.Fatalf("Objective = %q", task.Objective)
		}
		if task.ID == "" {
			t.Fatal("task needs a generated ID")
		}
	})

	t.Run("unknown persona falls back to default", func(t *testing.T) {
		task := NewTask("stranger", objectives)
		if task.Objective != "do the usual" {
			t.Fatalf("Objective = %q", task.Objective)
		}
	})

	t.Run("distinct tasks get distinct IDs", func(t *testing.T) {
		a := NewTask("researcher", objectives)
		b := NewTask("researcher", objectives)
		if a.ID == b.ID {
			t.Fatalf("IDs collide: %q", a.ID)
		}
	})
}

func TestTaskMutations(t *testing.T) {
	task := NewTask("researcher", map[string]string{"default": "do the usual"})
	before := task.Log.Len()

	task.UpdateObjective("new objective")
	if task.Objective != "new objective" {
		t.Fatalf("Objective = %q", task.Objective)
	}

	task.Assign("writer")
	if task.Assignee != "writer" {
		t.Fatalf("Assignee = %q", task.Assignee)
	}

	task.Prioritize()
	if task.Priority != PriorityHighest {
		t.Fatalf("Priority = %d", task.Priority)
	}

	task.SetFinished()
	if !task.Finished || task.Priority != PriorityNormal {
		t.Fatalf("Finished = %v, Priority = %d", task.Finished, task.Priority)
	}

	if task.Log.Len() != before+4 {
		t.Fatalf("each mutation should append one event, got %d new", task.Log.Len()-before)
	}
}
