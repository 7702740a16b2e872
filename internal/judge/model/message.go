package model

import "fmt"

// EvalMode selects which tests run and whether evaluation stops early.
type EvalMode string

const (
	// ModeRun judges public tests only and never stops early.
	ModeRun EvalMode = "run"
	// ModeSubmit judges all tests and stops at the first non-pass.
	ModeSubmit EvalMode = "submit"
)

// Valid reports whether the mode is one of the two known modes.
func (m EvalMode) Valid() bool {
	return m == ModeRun || m == ModeSubmit
}

// Source encodings carried on judge messages.
const (
	SourceEncodingPlain = ""
	SourceEncodingZstd  = "zstd"
)

// JudgeMessage is the Kafka payload for one evaluation task.
type JudgeMessage struct {
	SubmissionID   string   `json:"submission_id"`
	ProblemID      int64    `json:"problem_id"`
	Language       string   `json:"language"`
	Mode           EvalMode `json:"mode"`
	SourceKey      string   `json:"source_key"`
	SourceHash     string   `json:"source_hash"`
	SourceEncoding string   `json:"source_encoding,omitempty"`

	// PerTestTimeoutMs overrides the language default wall-clock limit when
	// positive.
	PerTestTimeoutMs int64 `json:"per_test_timeout_ms,omitempty"`
}

// Validate checks all required routing fields are present.
func (m JudgeMessage) Validate() error {
	if m.SubmissionID == "" {
		return fmt.Errorf("submission_id is empty")
	}
	if m.ProblemID <= 0 {
		return fmt.Errorf("problem_id is not positive")
	}
	if m.Language == "" {
		return fmt.Errorf("language is empty")
	}
	if !m.Mode.Valid() {
		return fmt.Errorf("mode %q is not run or submit", m.Mode)
	}
	if m.SourceKey == "" {
		return fmt.Errorf("source_key is empty")
	}
	switch m.SourceEncoding {
	case SourceEncodingPlain, SourceEncodingZstd:
	default:
		return fmt.Errorf("source_encoding %q is not supported", m.SourceEncoding)
	}
	return nil
}
