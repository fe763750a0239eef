package catalog

import (
	"strings"
	"testing"
)

func allRefsKnown(string) bool { return true }

func TestLookups(t *testing.T) {
	cat := Default()

	t.Run("known agent", func(t *testing.T) {
		spec, err := cat.Agent("responder")
		if err != nil {
			t.Fatalf("Agent: %v", err)
		}
		if !spec.NeedsReview {
			t.Fatal("responder should need review")
		}
	})

	t.Run("unknown agent errors", func(t *testing.T) {
		if _, err := cat.Agent("ghost"); err == nil {
			t.Fatal("expected error for unknown agent")
		}
	})

	t.Run("unknown team errors", func(t *testing.T) {
		if _, err := cat.Team("ghost"); err == nil {
			t.Fatal("expected error for unknown team")
		}
	})

	t.Run("unknown project errors", func(t *testing.T) {
		if _, err := cat.Project("ghost"); err == nil {
			t.Fatal("expected error for unknown project")
		}
	})

	t.Run("objective falls back to default", func(t *testing.T) {
		if got := cat.Objective("nobody"); got != cat.Tasks[DefaultEntry] {
			t.Fatalf("Objective = %q", got)
		}
		if got := cat.Objective("researcher"); !strings.Contains(got, "sources") {
			t.Fatalf("Objective = %q", got)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("default catalog is valid", func(t *testing.T) {
		if err := Default().Validate(allRefsKnown); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})

	t.Run("missing reviewer entry", func(t *testing.T) {
		cat := Default()
		delete(cat.Agents, ReviewerEntry)
		if err := cat.Validate(allRefsKnown); err == nil {
			t.Fatal("expected error for missing reviewer entry")
		}
	})

	t.Run("unknown prompt reference", func(t *testing.T) {
		cat := Default()
		err := cat.Validate(func(ref string) bool { return ref != "self.team.goal" })
		if err == nil || !strings.Contains(err.Error(), "self.team.goal") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("entry node must be a member", func(t *testing.T) {
		cat := Default()
		team := cat.Teams["small"]
		team.Graph.Entry = "ghost"
		cat.Teams["small"] = team
		if err := cat.Validate(allRefsKnown); err == nil {
			t.Fatal("expected error for non-member entry node")
		}
	})

	t.Run("member without agent entry", func(t *testing.T) {
		cat := Default()
		team := cat.Teams["small"]
		team.Members = append(team.Members, "ghost")
		cat.Teams["small"] = team
		if err := cat.Validate(allRefsKnown); err == nil {
			t.Fatal("expected error for member without agent entry")
		}
	})

	t.Run("project team must exist", func(t *testing.T) {
		cat := Default()
		cat.Projects["broken"] = ProjectSpec{Manager: "director", Teams: []string{"ghost"}}
		if err := cat.Validate(allRefsKnown); err == nil {
			t.Fatal("expected error for project with unknown team")
		}
	})
}
