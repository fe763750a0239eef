package crew

import (
	"github.com/crewgraph/crewgraph-go/crew/catalog"
	"github.com/crewgraph/crewgraph-go/crew/model"
)

// Personas whose final answers feed back into project planning.
const (
	ManagerPersona      = "project_manager"
	GoalEngineerPersona = "goal_engineer"
)

// Project owns its teams and aggregates their views keyed by team name. It
// is created once per run with an initial goal; construction assembles the
// configured teams, requests introductions, and performs one update so the
// aggregate views start populated.
type Project struct {
	Name       string
	ConfigName string
	Config     catalog.ProjectSpec
	Manager    string

	// Goal is the project objective. It can be refined at run time by a
	// goal engineer's final answer.
	Goal string

	// Plan is recovered from the project manager's final answer when one
	// appears.
	Plan string

	Backlog map[string]string
	Teams   []*Team

	// Inputs and Outputs hold per-team snapshots of the team views, keyed
	// by team name.
	Inputs  map[string]*TeamMessageLog
	Outputs map[string]*TeamMessageLog

	// FinalAnswers collects each team's final answers keyed by team name.
	FinalAnswers map[string]map[string]Message

	Log *Log
}

// NewProject builds a project from the named catalog entry. The full
// catalog is validated first so configuration mistakes surface before any
// model client is constructed.
func NewProject(configName, goal string, cat *catalog.Catalog, factory model.Factory, metrics *Metrics) (*Project, error) {
	if err := cat.Validate(KnownPromptRef); err != nil {
		return nil, err
	}
	spec, err := cat.Project(configName)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Name:         configName,
		ConfigName:   configName,
		Config:       spec,
		Manager:      spec.Manager,
		Goal:         goal,
		Backlog:      make(map[string]string),
		Inputs:       make(map[string]*TeamMessageLog),
		Outputs:      make(map[string]*TeamMessageLog),
		FinalAnswers: make(map[string]map[string]Message),
		Log:          NewLog(Target{Type: "Project", Name: configName}),
	}

	for _, teamName := range spec.Teams {
		team, err := NewTeam(teamName, cat, factory, metrics)
		if err != nil {
			return nil, err
		}
		team.Goal = goal
		p.Teams = append(p.Teams, team)
		p.logEvent("assembled team " + team.Name + " from entry " + teamName)
	}
	p.requestIntroductions()
	p.Update()
	return p, nil
}

func (p *Project) target() Target {
	return Target{Type: "Project", Name: p.Name}
}

func (p *Project) logEvent(desc string) {
	p.Log.Add(p.target(), desc)
}

func (p *Project) requestIntroductions() {
	for _, team := range p.Teams {
		team.RequestIntroductions()
	}
	p.logEvent("requested introductions")
}

// Team returns the team built from the named catalog entry, or nil.
func (p *Project) Team(configName string) *Team {
	for _, team := range p.Teams {
		if team.ConfigName == configName {
			return team
		}
	}
	return nil
}

// Update refreshes every team and re-snapshots their views into the
// project's aggregates, then recovers plan and goal refinements from
// planning personas' final answers.
func (p *Project) Update() {
	for _, team := range p.Teams {
		team.Update()
		if team.Inputs.Len() > 0 {
			p.Inputs[team.Name] = team.Inputs.Snapshot()
		}
		if team.Outputs.Len() > 0 {
			p.Outputs[team.Name] = team.Outputs.Snapshot()
		}
		if len(team.FinalAnswers) > 0 {
			answers := make(map[string]Message, len(team.FinalAnswers))
			for name, msg := range team.FinalAnswers {
				answers[name] = msg
			}
			p.FinalAnswers[team.Name] = answers
		}
	}
	p.fetchPlanGoals()
}

// fetchPlanGoals scans team final answers for planning personas. A project
// manager's answer becomes the plan; a goal engineer's answer replaces the
// goal.
func (p *Project) fetchPlanGoals() {
	for _, team := range p.Teams {
		if answer, ok := team.FinalAnswers[ManagerPersona]; ok {
			if plan := answer.String(); plan != p.Plan {
				p.Plan = plan
				p.logEvent("recovered plan from " + ManagerPersona)
			}
		}
		if answer, ok := team.FinalAnswers[GoalEngineerPersona]; ok {
			if goal := answer.String(); goal != p.Goal {
				p.Goal = goal
				p.logEvent("refined goal from " + GoalEngineerPersona)
			}
		}
	}
}
