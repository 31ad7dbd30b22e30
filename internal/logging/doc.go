// Package logging builds the slog loggers used across the pipeline. Two
// output formats are supported: a human-oriented console format with a
// component prefix, and JSON for machine consumption. The "auto" format
// selects console when stdout is a terminal.
package logging
