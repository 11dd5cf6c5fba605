package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldFlavor     = "flavor"
	FieldTheme      = "theme"
	FieldEncoding   = "encoding"
	FieldLineEnding = "line_ending"
	FieldConfig     = "config"

	// Document fields.
	FieldLines      = "lines"
	FieldBytes      = "bytes"
	FieldGeneration = "generation"
	FieldBlock      = "block"
	FieldOffset     = "offset"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
