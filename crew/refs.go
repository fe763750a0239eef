package crew

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// promptRef resolves one named piece of agent, team, or project state for
// prompt construction. Team and project may be nil for standalone agents.
type promptRef func(a *Agent, t *Team, p *Project) any

// promptRefs is the closed set of state references a prompt template may
// bind. Catalog validation rejects anything outside this table, so a
// misspelled reference fails at load time instead of producing an empty
// prompt slot at run time.
var promptRefs = map[string]promptRef{
	"self.name": func(a *Agent, _ *Team, _ *Project) any {
		return a.Name
	},
	"self.teammates": func(a *Agent, _ *Team, _ *Project) any {
		return a.Teammates
	},
	"self.task.objective": func(a *Agent, _ *Team, _ *Project) any {
		if a.Task == nil {
			return nil
		}
		return a.Task.Objective
	},
	"self.config.response_template": func(a *Agent, _ *Team, _ *Project) any {
		return a.Config.ResponseTemplate
	},
	"self.inputs.last": func(a *Agent, _ *Team, _ *Project) any {
		entry, ok := a.Inputs.Last()
		if !ok {
			return nil
		}
		return entry
	},
	"self.inputs.last_message": func(a *Agent, _ *Team, _ *Project) any {
		msg, ok := a.Inputs.LastMessage()
		if !ok {
			return nil
		}
		return msg
	},
	"self.outputs.last": func(a *Agent, _ *Team, _ *Project) any {
		entry, ok := a.Outputs.Last()
		if !ok {
			return nil
		}
		return entry
	},
	"self.outputs.last_message": func(a *Agent, _ *Team, _ *Project) any {
		msg, ok := a.Outputs.LastMessage()
		if !ok {
			return nil
		}
		return msg
	},
	"self.team.name": func(_ *Agent, t *Team, _ *Project) any {
		if t == nil {
			return nil
		}
		return t.Name
	},
	"self.team.goal": func(_ *Agent, t *Team, _ *Project) any {
		if t == nil {
			return nil
		}
		return t.Goal
	},
	"self.team.final_answers": func(_ *Agent, t *Team, _ *Project) any {
		if t == nil {
			return nil
		}
		return t.FinalAnswers
	},
	"self.project.name": func(_ *Agent, _ *Team, p *Project) any {
		if p == nil {
			return nil
		}
		return p.Name
	},
	"self.project.goal": func(_ *Agent, _ *Team, p *Project) any {
		if p == nil {
			return nil
		}
		return p.Goal
	},
}

// KnownPromptRef reports whether name is a resolvable prompt parameter
// reference.
func KnownPromptRef(name string) bool {
	_, ok := promptRefs[name]
	return ok
}

// PromptRefNames returns the sorted list of supported references.
func PromptRefNames() []string {
	names := make([]string, 0, len(promptRefs))
	for name := range promptRefs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// placeholderName flattens a dotted reference into the identifier form used
// inside prompt templates: "self.team.goal" binds "{self_team_goal}".
func placeholderName(ref string) string {
	return strings.ReplaceAll(ref, ".", "_")
}

// resolvePromptParams evaluates each configured reference against the
// agent's current state. Empty or missing values render as "None" so the
// model sees an explicit absence rather than a blank slot.
func resolvePromptParams(refs []string, a *Agent, t *Team, p *Project) (map[string]string, error) {
	params := make(map[string]string, len(refs))
	for _, ref := range refs {
		fn, ok := promptRefs[ref]
		if !ok {
			return nil, &ConfigError{Entity: "agent", Name: a.Name, Reason: fmt.Sprintf("unknown prompt parameter %q", ref)}
		}
		params[placeholderName(ref)] = renderValue(fn(a, t, p))
	}
	return params, nil
}

// noneValue stands in for empty prompt parameters.
const noneValue = "None"

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return noneValue
	case string:
		if val == "" {
			return noneValue
		}
		return val
	case Message:
		if val.IsZero() {
			return noneValue
		}
		return val.String()
	case Entry:
		if val.Message.IsZero() {
			return noneValue
		}
		return renderJSON(val)
	case []string:
		if len(val) == 0 {
			return noneValue
		}
		return renderJSON(val)
	case map[string]Message:
		if len(val) == 0 {
			return noneValue
		}
		flat := make(map[string]string, len(val))
		for name, msg := range val {
			flat[name] = msg.String()
		}
		return renderJSON(flat)
	case map[string]string:
		if len(val) == 0 {
			return noneValue
		}
		return renderJSON(val)
	case map[string]any:
		if len(val) == 0 {
			return noneValue
		}
		return renderJSON(val)
	default:
		return renderJSON(val)
	}
}

func renderJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// renderTemplate substitutes every {placeholder} in template with its bound
// value. An unbound placeholder is a configuration error: templates and
// prompt parameter lists are authored together and must stay in sync.
func renderTemplate(template string, params map[string]string) (string, error) {
	var unbound []string
	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := params[name]
		if !ok {
			unbound = append(unbound, name)
			return match
		}
		return value
	})
	if len(unbound) > 0 {
		return "", &ConfigError{Entity: "template", Name: unbound[0], Reason: "placeholder has no bound prompt parameter"}
	}
	return rendered, nil
}
