// Package spec defines the execution specification and resource limits.
package spec

// ResourceLimit describes hard limits enforced by the engine. Wall-clock is
// the primary enforcement axis; output capping protects the judge from
// runaway writers.
type ResourceLimit struct {
	WallTimeMs int64
	OutputKB   int64
}

// RunSpec is the unified execution specification for one process run.
type RunSpec struct {
	WorkDir string
	Cmd     []string
	Env     []string

	// Stdin is fed to the process verbatim.
	Stdin  string
	Limits ResourceLimit
}
