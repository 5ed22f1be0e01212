package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Slot shape changed between renders",
		Detail:   "A component must declare the same hooks, of the same kinds, in the same order on every render. Do not call UseState, UseEffect or UseChild inside conditions or loops.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Instance torn down twice",
		Detail:   "Unmount was called on an instance that had already been torn down, directly or through its parent.",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Effect callback failed",
		Detail:   "An effect body or its cleanup panicked. The remaining effects of the commit still ran.",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Component render failed",
		Detail:   "A component panicked while rendering. The flush stopped and the remaining instances stay queued.",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Render storm",
		Detail:   "Effects kept scheduling renders and the flush exceeded its batch budget. Check for effects that write state their own dependencies read.",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Hook called outside render",
		Detail:   "UseState, UseEffect and UseChild may only be called while the component body runs.",
	},
	"E007": {
		Category: CategoryRuntime,
		Message:  "Dispatched callback panicked",
		Detail:   "A callback run on the host loop panicked. The loop recovered and kept running.",
	},
	"E008": {
		Category: CategoryRuntime,
		Message:  "Host loop closed",
		Detail:   "Work was submitted to a host loop that had already stopped.",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Configuration parse error",
		Detail:   "The configuration file is not valid JSON or YAML.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong format.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Unknown comparer",
		Detail:   "runtime.comparer must be one of: default, identity, structural, cmp.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command could not complete.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "No snapfx.json or snapfx.yaml was found at the given path.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Devtools server failed",
		Detail:   "The devtools HTTP server could not start or stopped unexpectedly.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
