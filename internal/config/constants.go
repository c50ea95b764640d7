package config

// Version is reported by the version command and --version.
const Version = "0.2.0"

// SchemaFileNames are the recognized schema file names, tried in order
// during the walk-up search.
var SchemaFileNames = []string{"funtype.yaml", "funtype.yml"}

// Environment variables honored by the CLI.
const (
	// EnvSchema overrides schema discovery with an explicit file path.
	EnvSchema = "FUNTYPE_SCHEMA"

	// EnvNoColor disables colored output when set to a non-empty value,
	// following the no-color.org convention.
	EnvNoColor = "NO_COLOR"
)
