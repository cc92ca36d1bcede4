package domain

// Phase enumerates resolution milestones.
type Phase string

const (
	PhaseIdle    Phase = ""
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// ResolutionState is the snapshot exposed to the viewer.
// The zero value is the idle state.
type ResolutionState struct {
	Phase   Phase
	Link    string
	Loading bool
	Error   bool
	Title   string
	Content string
}

// Idle reports whether nothing is loaded, loading or failed.
func (s ResolutionState) Idle() bool {
	return s == ResolutionState{}
}
