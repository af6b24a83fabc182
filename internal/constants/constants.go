package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "conscan"

	// ConfigFileName is the default config file name
	ConfigFileName = "conscan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "CONSCAN"

	// BaselineFileName is where the pinned metrics baseline is stored
	// when no explicit path is configured
	BaselineFileName = "conscan-baseline.yaml"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
	OutputFormatCSV  = "csv"
)
