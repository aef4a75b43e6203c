package converter

// Status defines the processing states reported for a file through Hooks.
type Status string

// Constants representing the defined file processing statuses.
const (
	StatusProcessing Status = "processing"
	StatusConverted  Status = "converted"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
	StatusDetected   Status = "detected"
	StatusRemoved    Status = "removed"
)

// OutputFormat defines the format for the final report printed to standard output.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatTOML OutputFormat = "toml"
)

// Command names the operation a Report was produced by.
type Command string

const (
	CommandConvert  Command = "convert"
	CommandDetect   Command = "detect"
	CommandCleanBak Command = "cleanbak"
)
