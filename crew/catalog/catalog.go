// Package catalog holds the static, name-keyed configuration tables the
// orchestration core resolves agents, teams, projects, and task objectives
// from. Tables are read-only after construction; every table carries a
// required "default" entry.
package catalog

import (
	"fmt"
	"time"
)

// ReviewerEntry is the fixed agent entry used for every auto-generated
// reviewer, regardless of which agent it reviews.
const ReviewerEntry = "reviewer"

// DefaultEntry is the fallback key required in every table.
const DefaultEntry = "default"

// ModelRef selects a provider and a size tier; the model package resolves
// the pair to a concrete model name.
type ModelRef struct {
	API  string // "openai", "anthropic", "google"
	Size string // "small", "medium", "large", "default"
}

// GenParams are generation parameters passed through to the model client at
// construction time, never per call.
type GenParams struct {
	Seed           int
	Temperature    float64
	TopP           float64
	MaxTokens      int
	MaxRetries     int
	Timeout        time.Duration
	ResponseFormat string // "json_object" or "text"
}

// AgentSpec is the immutable configuration snapshot an Agent resolves at
// construction.
type AgentSpec struct {
	Priority    int
	NeedsReview bool
	Model       ModelRef

	// PromptParams are live state reference expressions (for example
	// "self.team.goal"), resolved against current orchestration state at
	// render time. Unknown references are rejected by Validate, not at
	// render time.
	PromptParams []string

	// PromptTemplate contains {placeholder} slots named after the flattened
	// reference paths (periods replaced with underscores).
	PromptTemplate string

	// ResponseTemplate is the JSON shape the agent is asked to produce;
	// it is substituted into prompts via self.config.response_template.
	ResponseTemplate map[string]any

	Tools  []string
	Params GenParams
}

// GraphSpec describes how a team's workflow graph is wired.
type GraphSpec struct {
	Entry  string
	Finish string

	// EdgeOrder, when set, derives a linear chain with review detours:
	// reviewed members get a conditional edge to the next member (taken
	// once finished) and a fallback edge to their reviewer.
	EdgeOrder []string

	// Edges, when set, wires explicit (from, to) pairs instead.
	Edges [][2]string
}

// TeamSpec configures a team: its leader, ordered member list, and graph.
type TeamSpec struct {
	Leader  string
	Members []string
	Graph   GraphSpec
}

// ProjectSpec configures a project: its manager and team entries.
type ProjectSpec struct {
	Manager string
	Teams   []string
}

// Catalog bundles the four lookup tables.
type Catalog struct {
	Agents   map[string]AgentSpec
	Teams    map[string]TeamSpec
	Projects map[string]ProjectSpec

	// Tasks maps persona name to task objective text.
	Tasks map[string]string
}

// Agent resolves an agent entry. Unknown names are configuration errors;
// there is no silent fallback for agents.
func (c *Catalog) Agent(name string) (AgentSpec, error) {
	spec, ok := c.Agents[name]
	if !ok {
		return AgentSpec{}, fmt.Errorf("agent catalog: unknown entry %q", name)
	}
	return spec, nil
}

// Team resolves a team entry.
func (c *Catalog) Team(name string) (TeamSpec, error) {
	spec, ok := c.Teams[name]
	if !ok {
		return TeamSpec{}, fmt.Errorf("team catalog: unknown entry %q", name)
	}
	return spec, nil
}

// Project resolves a project entry.
func (c *Catalog) Project(name string) (ProjectSpec, error) {
	spec, ok := c.Projects[name]
	if !ok {
		return ProjectSpec{}, fmt.Errorf("project catalog: unknown entry %q", name)
	}
	return spec, nil
}

// Objective resolves a persona's task objective, falling back to the
// "default" entry. Task objectives are the one table with a soft fallback.
func (c *Catalog) Objective(persona string) string {
	if objective, ok := c.Tasks[persona]; ok {
		return objective
	}
	return c.Tasks[DefaultEntry]
}

// Validate checks the catalog for the failure modes that would otherwise
// only surface mid-workflow: missing default entries, members naming
// unknown agent entries, graph entry/finish/edge nodes naming unknown
// members, and prompt parameters using unknown reference paths (knownRef
// reports whether the core supports a reference expression).
func (c *Catalog) Validate(knownRef func(string) bool) error {
	if _, ok := c.Agents[DefaultEntry]; !ok {
		return fmt.Errorf("agent catalog: missing %q entry", DefaultEntry)
	}
	if _, ok := c.Agents[ReviewerEntry]; !ok {
		return fmt.Errorf("agent catalog: missing %q entry", ReviewerEntry)
	}
	if _, ok := c.Tasks[DefaultEntry]; !ok {
		return fmt.Errorf("task catalog: missing %q entry", DefaultEntry)
	}
	if _, ok := c.Teams[DefaultEntry]; !ok {
		return fmt.Errorf("team catalog: missing %q entry", DefaultEntry)
	}
	if _, ok := c.Projects[DefaultEntry]; !ok {
		return fmt.Errorf("project catalog: missing %q entry", DefaultEntry)
	}

	for name, spec := range c.Agents {
		for _, ref := range spec.PromptParams {
			if !knownRef(ref) {
				return fmt.Errorf("agent catalog: %q: unknown prompt reference %q", name, ref)
			}
		}
	}

	for name, spec := range c.Teams {
		members := make(map[string]bool, len(spec.Members))
		for _, member := range spec.Members {
			if _, ok := c.Agents[member]; !ok {
				return fmt.Errorf("team catalog: %q: member %q has no agent entry", name, member)
			}
			members[member] = true
		}
		if !members[spec.Graph.Entry] {
			return fmt.Errorf("team catalog: %q: entry node %q is not a member", name, spec.Graph.Entry)
		}
		if !members[spec.Graph.Finish] {
			return fmt.Errorf("team catalog: %q: finish node %q is not a member", name, spec.Graph.Finish)
		}
		for _, member := range spec.Graph.EdgeOrder {
			if !members[member] {
				return fmt.Errorf("team catalog: %q: edge order names non-member %q", name, member)
			}
		}
	}

	for name, spec := range c.Projects {
		for _, team := range spec.Teams {
			if _, ok := c.Teams[team]; !ok {
				return fmt.Errorf("project catalog: %q: team %q has no team entry", name, team)
			}
		}
	}

	return nil
}
