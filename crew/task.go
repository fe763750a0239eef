package crew

import (
	"github.com/google/uuid"
)

// DefaultAssignee is the persona that owns a task until it is explicitly
// reassigned.
const DefaultAssignee = "task_manager"

// Task is the objective attached to an agent: what the agent is trying to
// produce, who it is assigned to, and whether it is done. One Task is
// created per Agent at construction, keyed by the agent's persona name.
//
// Every mutation appends an audit event, so the task log reconstructs the
// objective's history.
type Task struct {
	ID        string
	Priority  int
	Objective string
	Assignee  string
	Finished  bool
	Log       *Log
}

// Task priorities. Zero is highest; new tasks start at normal priority.
const (
	PriorityHighest = 0
	PriorityNormal  = 1
)

// NewTask creates a task for the given persona. The objective comes from
// the persona-keyed entry in objectives, falling back to the "default"
// entry when the persona has no dedicated objective.
func NewTask(persona string, objectives map[string]string) *Task {
	objective, ok := objectives[persona]
	if !ok {
		objective = objectives["default"]
	}
	t := &Task{
		ID:        uuid.NewString(),
		Priority:  PriorityNormal,
		Objective: objective,
		Assignee:  DefaultAssignee,
	}
	t.Log = NewLog(t.target())
	t.Log.Add(t.target(), "objective created: "+objective)
	return t
}

func (t *Task) target() Target {
	return Target{Type: "Task", Name: t.ID}
}

// UpdateObjective replaces the task objective.
func (t *Task) UpdateObjective(objective string) {
	t.Objective = objective
	t.Log.Add(t.target(), "objective changed: "+objective)
}

// Assign reassigns the task to a new owner.
func (t *Task) Assign(assignee string) {
	t.Assignee = assignee
	t.Log.Add(t.target(), "assignee changed: "+assignee)
}

// Prioritize raises the task to highest priority.
func (t *Task) Prioritize() {
	t.Priority = PriorityHighest
	t.Log.Add(t.target(), "task prioritized")
}

// SetFinished marks the task done and drops it back to normal priority.
func (t *Task) SetFinished() {
	t.Priority = PriorityNormal
	t.Finished = true
	t.Log.Add(t.target(), "task finished")
}
