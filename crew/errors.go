package crew

import "fmt"

// Workflow error codes.
const (
	CodeNodeNotFound     = "NODE_NOT_FOUND"
	CodeNoRoute          = "NO_ROUTE"
	CodeNoEntryNode      = "NO_ENTRY_NODE"
	CodeMaxStepsExceeded = "MAX_STEPS_EXCEEDED"
	CodeModelError       = "MODEL_ERROR"
	CodeStoreError       = "STORE_ERROR"
)

// WorkflowError is a coded error from workflow compilation or execution.
// The code is machine-readable; the message is for humans.
type WorkflowError struct {
	Message string
	Code    string
}

func (e *WorkflowError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// ConfigError reports a broken workflow definition: an unknown catalog
// name, an unknown prompt reference, or a template placeholder with no
// bound value. Configuration errors are fatal and never masked.
type ConfigError struct {
	Entity string // which table or component rejected the configuration
	Name   string // the offending key, reference, or placeholder
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q: %s", e.Entity, e.Name, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
}
