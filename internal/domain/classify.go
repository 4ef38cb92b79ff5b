package domain

import "strings"

// DefaultStageName labels a paused pipeline whose pending step could not be found.
const DefaultStageName = "paused"

func (p Pipeline) IsFailed() bool {
	if p.State.Result == nil {
		return false
	}
	switch p.State.Result.Name {
	case "FAILED", "ERROR", "EXPIRED":
		return true
	}
	return false
}

func (p Pipeline) IsSuccessful() bool {
	return p.State.Result != nil && p.State.Result.Name == "SUCCESSFUL"
}

// IsPaused reports whether the pipeline waits for a manual step. Either the
// state type or the stage name is enough.
func (p Pipeline) IsPaused() bool {
	if p.State.Type != nil && strings.Contains(*p.State.Type, "paused") {
		return true
	}
	if st := p.State.Stage; st != nil && st.Name != nil {
		return strings.ToUpper(*st.Name) == "PAUSED"
	}
	return false
}

func (p Pipeline) IsInProgress() bool {
	running := p.State.Name == "IN_PROGRESS" || p.State.Name == "PENDING"
	return running && !p.IsPaused()
}

// Classify applies Failed > Paused > InProgress > Healthy.
func Classify(p Pipeline) Classification {
	switch {
	case p.IsFailed():
		return Failed
	case p.IsPaused():
		return Paused
	case p.IsInProgress():
		return InProgress
	default:
		return Healthy
	}
}

// IsPending reports whether the step waits to be started. A present state name
// decides on its own; the type is only consulted when the name is missing.
func (s PipelineStep) IsPending() bool {
	if s.State == nil {
		return false
	}
	if s.State.Name != nil {
		return *s.State.Name == "PENDING"
	}
	if s.State.Type != nil {
		return strings.Contains(*s.State.Type, "pending")
	}
	return false
}

func PendingStageName(steps []PipelineStep) string {
	for _, s := range steps {
		if !s.IsPending() {
			continue
		}
		if s.Name != nil {
			return *s.Name
		}
		break
	}
	return DefaultStageName
}
