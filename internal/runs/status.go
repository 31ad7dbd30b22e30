// Package runs persists a ledger of generation runs in a local SQLite
// database so finished and failed runs stay inspectable from the CLI.
package runs

// Status reflects where a generation run is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Stage names the pipeline stage a run is currently in. Values are free
// form; the pipeline records its own checkpoints.
type Stage = string

const (
	StageParse      Stage = "parse"
	StageSynthesize Stage = "synthesize"
	StageRecognize  Stage = "recognize"
	StageAlign      Stage = "align"
	StageAssemble   Stage = "assemble"
	StageEncode     Stage = "encode"
	StageFinalize   Stage = "finalize"
)
