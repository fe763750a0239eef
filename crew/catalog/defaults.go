package catalog

import "time"

// DefaultSeed is the generation seed shared by every built-in agent entry.
const DefaultSeed = 42

// defaultGenParams mirrors the stock generation parameters applied to all
// built-in personas.
func defaultGenParams() GenParams {
	return GenParams{
		Seed:           DefaultSeed,
		Temperature:    0,
		TopP:           1.0,
		MaxTokens:      4096,
		MaxRetries:     2,
		Timeout:        60 * time.Second,
		ResponseFormat: "json_object",
	}
}

func defaultModel() ModelRef {
	return ModelRef{API: "openai", Size: "default"}
}

// stringResponseTemplate is the plain single-answer response shape.
func stringResponseTemplate() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{
				"type":        "string",
				"description": "YOUR RESPONSE",
			},
		},
	}
}

// reviewResponseTemplate is the verdict shape reviewers must produce.
func reviewResponseTemplate() map[string]any {
	return map[string]any{
		"response": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pass_review": map[string]any{
					"type":        "boolean",
					"description": "True/False",
				},
				"justification": map[string]any{
					"type":        "string",
					"description": "Your specific justification for passing or failing the review",
				},
				"suggestions": map[string]any{
					"type":        "string",
					"description": "Your suggestions for improving the submission",
				},
			},
		},
	}
}

const defaultPromptTemplate = `Your task objective is: {self_task_objective}

Your reviewer has provided the following feedback to help guide your next response: {self_inputs_last_message}

Your response must adhere to the following JSON format: {self_config_response_template}
`

const responderPromptTemplate = `You are an honest, hardworking assistant. Your specific task is: {self_task_objective}
The goal you are trying to solve is articulated in the following 'Goal' prompt: {self_team_goal}

If you receive feedback from a reviewer, please adjust your response accordingly.
Here is the feedback received: {self_inputs_last_message}

Your response must adhere to the following JSON format: {self_config_response_template}
`

const reviewerPromptTemplate = `You are an expert reviewer named: {self_name}

You are working on a project with the 'Project Goal': {self_project_goal}
You are working on a team with the 'Team Goal': {self_team_goal}

Your specific task is: {self_task_objective}

If the submission satisfies the task objective, set 'pass_review'=true and 'suggestions'=None.
If it does not, set 'pass_review'=false and provide detailed suggestions.

Here is the submission for your review: {self_inputs_last}

You should consider the previous feedback you have given when providing new feedback.
Feedback: {self_outputs_last}

Your response must adhere to the following JSON format: {self_config_response_template}
`

const promptEngineerPromptTemplate = `You are an expert prompt engineer. Your specific task is: {self_task_objective}
The goal to restate as an effective language-model prompt is: {self_team_goal}

If you receive feedback from a reviewer, please adjust your response accordingly.
Here is the feedback received: {self_inputs_last_message}

Your response must adhere to the following JSON format: {self_config_response_template}
`

const researcherPromptTemplate = `You are a meticulous researcher. Your specific task is: {self_task_objective}
The goal you are researching is: {self_team_goal}

If you receive feedback from a reviewer, please adjust your response accordingly.
Here is the feedback received: {self_inputs_last_message}

Your response must adhere to the following JSON format: {self_config_response_template}
`

const reporterPromptTemplate = `You are a reporter summarizing your teammates' work. Your specific task is: {self_task_objective}
Your teammates are: {self_teammates}
The final answers produced so far are: {self_team_final_answers}

Your response must adhere to the following JSON format: {self_config_response_template}
`

// Default returns the built-in catalog: the stock personas, the "small",
// "generic", and "default" teams, and their matching project entries.
func Default() *Catalog {
	agents := map[string]AgentSpec{
		DefaultEntry: {
			Priority:    0,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.inputs.last_message",
				"self.task.objective",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"responder": {
			Priority:    1,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   responderPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		// Reviewers must produce a fresh verdict on every visit, so the
		// entry is marked NeedsReview to keep the one-invoke latch from
		// freezing the first verdict. Auto-paired reviewers never get a
		// reviewer of their own, so they simply never latch.
		ReviewerEntry: {
			Priority:    1,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.name",
				"self.team.goal",
				"self.project.goal",
				"self.inputs.last",
				"self.outputs.last",
				"self.task.objective",
				"self.config.response_template",
			},
			PromptTemplate:   reviewerPromptTemplate,
			ResponseTemplate: reviewResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"prompt_engineer": {
			Priority:    1,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   promptEngineerPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"goal_engineer": {
			Priority:    1,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.project.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"project_manager": {
			Priority:    0,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.project.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"task_manager": {
			Priority:    1,
			NeedsReview: false,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"task_decomposer": {
			Priority:    1,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"director": {
			Priority:    0,
			NeedsReview: false,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"researcher": {
			Priority:    1,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   researcherPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"team_reporter": {
			Priority:    1,
			NeedsReview: true,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.teammates",
				"self.team.final_answers",
				"self.config.response_template",
			},
			PromptTemplate:   reporterPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"user_proxy": {
			Priority:    0,
			NeedsReview: false,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
		"developer": {
			Priority:    1,
			NeedsReview: false,
			Model:       defaultModel(),
			PromptParams: []string{
				"self.task.objective",
				"self.team.goal",
				"self.inputs.last_message",
				"self.config.response_template",
			},
			PromptTemplate:   defaultPromptTemplate,
			ResponseTemplate: stringResponseTemplate(),
			Params:           defaultGenParams(),
		},
	}

	tasks := map[string]string{
		DefaultEntry:      "Provide a comprehensive answer.",
		"responder":       "Provide a comprehensive answer.",
		"director":        "Provide a comprehensive answer.",
		"task_manager":    "Provide a comprehensive answer.",
		"task_decomposer": "Provide a comprehensive answer.",
		"goal_engineer":   "Provide a comprehensive answer.",
		"prompt_engineer": "Restate the goal as a clear, effective language-model prompt.",
		"project_manager": "Provide a comprehensive answer.",
		"user_proxy":      "Provide a comprehensive answer.",
		"developer":       "Provide a comprehensive answer.",
		"researcher":      "Provide a comprehensive and factual answer. Make sure to cite and reference your sources.",
		"team_reporter":   "Summarize each of the final answers provided by your teammates and produce a coherent distillation of their findings.",
		ReviewerEntry: "Review and critique the submission, then provide suggestions to improve it. " +
			"Factual submissions need sources and citations; fiction merely needs to satisfy the prompt.",
	}

	teams := map[string]TeamSpec{
		"small": {
			Leader:  "director",
			Members: []string{"prompt_engineer", "responder"},
			Graph: GraphSpec{
				Entry:     "prompt_engineer",
				Finish:    "responder",
				EdgeOrder: []string{"prompt_engineer", "responder"},
			},
		},
		"generic": {
			Leader: "director",
			Members: []string{
				"goal_engineer",
				"project_manager",
				"task_manager",
				"researcher",
				"team_reporter",
			},
			Graph: GraphSpec{
				Entry:  "goal_engineer",
				Finish: "team_reporter",
				EdgeOrder: []string{
					"goal_engineer",
					"project_manager",
					"task_manager",
					"researcher",
					"team_reporter",
				},
			},
		},
		DefaultEntry: {
			Leader:  "task_manager",
			Members: []string{"task_manager", "director", "responder"},
			Graph: GraphSpec{
				Entry:     "task_manager",
				Finish:    "responder",
				EdgeOrder: []string{"task_manager", "director", "responder"},
			},
		},
	}

	projects := map[string]ProjectSpec{
		"small": {
			Manager: "director",
			Teams:   []string{"small"},
		},
		"generic": {
			Manager: "director",
			Teams:   []string{"generic"},
		},
		DefaultEntry: {
			Manager: "task_manager",
			Teams:   []string{DefaultEntry},
		},
	}

	return &Catalog{
		Agents:   agents,
		Teams:    teams,
		Projects: projects,
		Tasks:    tasks,
	}
}
