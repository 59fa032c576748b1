package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Build Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryBuild,
		Message:  "Element construction failed",
		Detail:   "An error occurred while building an element from its description. No partial tree is returned.",
	},
	"E002": {
		Category: CategoryBuild,
		Message:  "Element construction panicked",
		Detail:   "A panic occurred while building an element, usually inside a post-construction callback. The element was discarded.",
	},
	"E003": {
		Category: CategoryBuild,
		Message:  "Invalid attribute value",
		Detail:   "Attribute and property values must be strings, booleans, numbers, or implement fmt.Stringer.",
	},
	"E004": {
		Category: CategoryBuild,
		Message:  "Nil description",
		Detail:   "Build was called with a nil description.",
	},
	"E010": {
		Category: CategoryBuild,
		Message:  "SVG markup could not be parsed",
		Detail:   "Raw SVG markup must be well-formed XML whose root <svg> element declares the SVG namespace.",
	},

	// ============================================
	// Fetch Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryFetch,
		Message:  "Conflicting request bodies",
		Detail:   "A request can carry either a JSON payload or multipart form data, not both.",
	},
	"E021": {
		Category: CategoryFetch,
		Message:  "Payload could not be encoded",
		Detail:   "The JSON payload could not be serialized.",
	},
	"E022": {
		Category: CategoryFetch,
		Message:  "Form data could not be encoded",
		Detail:   "A multipart form field or file could not be written.",
	},
	"E023": {
		Category: CategoryFetch,
		Message:  "Invalid request URL",
		Detail:   "The endpoint could not be parsed or resolved against the base URL.",
	},

	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "domkit.json not found",
		Detail:   "No configuration file was found at the given path.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid domkit.json",
		Detail:   "The configuration file contains invalid JSON.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value failed validation.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "domkit.json already exists",
		Detail:   "Refusing to overwrite an existing configuration file.",
	},

	// ============================================
	// CLI Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryCLI,
		Message:  "Description file could not be read",
		Detail:   "The element description file could not be opened or decoded.",
	},
	"E121": {
		Category: CategoryCLI,
		Message:  "Invalid form field",
		Detail:   "Form fields must be given as key=value, or key=@path for files.",
	},
	"E122": {
		Category: CategoryCLI,
		Message:  "Invalid meta tag",
		Detail:   "Meta tags must be given as name=content.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
