package crew

import (
	"fmt"

	"github.com/crewgraph/crewgraph-go/crew/catalog"
	"github.com/crewgraph/crewgraph-go/crew/model"
)

// testCatalog extends the built-in catalog with fixed-purpose entries:
// "drafter" and "closer" never need review, "writer" does. The "pipeline"
// team chains drafter and closer; the "solo" team holds only writer, whose
// paired reviewer becomes the exit node.
func testCatalog() *catalog.Catalog {
	cat := catalog.Default()

	plain := cat.Agents["task_manager"]
	cat.Agents["drafter"] = plain
	cat.Agents["closer"] = plain

	reviewed := cat.Agents["responder"]
	cat.Agents["writer"] = reviewed

	cat.Teams["pipeline"] = catalog.TeamSpec{
		Leader:  "drafter",
		Members: []string{"drafter", "closer"},
		Graph: catalog.GraphSpec{
			Entry:     "drafter",
			Finish:    "closer",
			EdgeOrder: []string{"drafter", "closer"},
		},
	}
	cat.Teams["solo"] = catalog.TeamSpec{
		Leader:  "writer",
		Members: []string{"writer"},
		Graph: catalog.GraphSpec{
			Entry:     "writer",
			Finish:    "writer",
			EdgeOrder: []string{"writer"},
		},
	}
	cat.Projects["pipeline"] = catalog.ProjectSpec{Manager: "drafter", Teams: []string{"pipeline"}}
	cat.Projects["solo"] = catalog.ProjectSpec{Manager: "writer", Teams: []string{"solo"}}
	return cat
}

func textResponse(text string) model.Response {
	return model.Response{
		Content: fmt.Sprintf(`{"response": %q}`, text),
		Usage:   model.Usage{Input: 10, Output: 5, Total: 15},
	}
}

func reviewResponse(pass bool, suggestions string) model.Response {
	return model.Response{
		Content: fmt.Sprintf(`{"response": {"pass_review": %t, "suggestions": %q}}`, pass, suggestions),
		Usage:   model.Usage{Input: 20, Output: 8, Total: 28},
	}
}

func newMock(responses ...model.Response) *model.Mock {
	return &model.Mock{Responses: responses}
}
