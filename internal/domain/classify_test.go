package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func pipelineWith(name, result string) Pipeline {
	p := Pipeline{UUID: "{1}", BuildNumber: 1, State: PipelineState{Name: name}}
	if result != "" {
		p.State.Result = &PipelineResult{Name: result}
	}
	return p
}

func TestClassify_FailedResultsWinRegardlessOfState(t *testing.T) {
	for _, result := range []string{"FAILED", "ERROR", "EXPIRED"} {
		for _, name := range []string{"COMPLETED", "IN_PROGRESS", "PENDING"} {
			p := pipelineWith(name, result)
			p.State.Type = ptr("pipeline_state_in_progress_paused")
			assert.True(t, p.IsFailed(), "%s/%s", name, result)
			assert.Equal(t, Failed, Classify(p), "%s/%s", name, result)
		}
	}
}

func TestClassify_StoppedIsNeitherFailedNorSuccessful(t *testing.T) {
	p := pipelineWith("COMPLETED", "STOPPED")
	assert.False(t, p.IsFailed())
	assert.False(t, p.IsSuccessful())
	assert.Equal(t, Healthy, Classify(p))
}

func TestClassify_Successful(t *testing.T) {
	p := pipelineWith("COMPLETED", "SUCCESSFUL")
	assert.True(t, p.IsSuccessful())
	assert.Equal(t, Healthy, Classify(p))
}

func TestClassify_PausedTakesPrecedenceOverInProgress(t *testing.T) {
	byType := pipelineWith("IN_PROGRESS", "")
	byType.State.Type = ptr("pipeline_state_in_progress_paused")

	byStage := pipelineWith("IN_PROGRESS", "")
	byStage.State.Stage = &PipelineStage{Name: ptr("paused")}

	for _, p := range []Pipeline{byType, byStage} {
		assert.True(t, p.IsPaused())
		assert.False(t, p.IsInProgress())
		assert.Equal(t, Paused, Classify(p))
	}
}

func TestIsPaused_TypeMatchIsCaseSensitive(t *testing.T) {
	p := pipelineWith("IN_PROGRESS", "")
	p.State.Type = ptr("PIPELINE_STATE_PAUSED")
	assert.False(t, p.IsPaused())
	assert.Equal(t, InProgress, Classify(p))
}

func TestIsPaused_StageWithoutNameIsNotPaused(t *testing.T) {
	p := pipelineWith("IN_PROGRESS", "")
	p.State.Stage = &PipelineStage{Type: ptr("pipeline_stage_paused")}
	assert.False(t, p.IsPaused())
}

func TestClassify_RunningStates(t *testing.T) {
	assert.Equal(t, InProgress, Classify(pipelineWith("IN_PROGRESS", "")))
	assert.Equal(t, InProgress, Classify(pipelineWith("PENDING", "")))
	assert.Equal(t, Healthy, Classify(pipelineWith("COMPLETED", "")))
}

func TestPendingStageName(t *testing.T) {
	steps := []PipelineStep{
		{UUID: "a", Name: ptr("Build"), State: &StepState{Name: ptr("COMPLETED")}},
		{UUID: "b", Name: ptr("Deploy to production"), State: &StepState{Name: ptr("PENDING")}},
		{UUID: "c", Name: ptr("Smoke"), State: &StepState{Name: ptr("PENDING")}},
	}
	assert.Equal(t, "Deploy to production", PendingStageName(steps))
}

func TestPendingStageName_TypeOnly(t *testing.T) {
	steps := []PipelineStep{
		{UUID: "a", Name: ptr("Build"), State: &StepState{Type: ptr("pipeline_step_state_completed")}},
		{UUID: "b", Name: ptr("Approve"), State: &StepState{Type: ptr("pipeline_step_state_pending")}},
	}
	assert.Equal(t, "Approve", PendingStageName(steps))
}

func TestPendingStageName_Fallback(t *testing.T) {
	assert.Equal(t, DefaultStageName, PendingStageName(nil))
	assert.Equal(t, DefaultStageName, PendingStageName([]PipelineStep{{UUID: "a"}}))
	assert.Equal(t, DefaultStageName, PendingStageName([]PipelineStep{
		{UUID: "a", State: &StepState{Name: ptr("PENDING")}},
	}))
}

func TestBranch(t *testing.T) {
	assert.Equal(t, "", Pipeline{}.Branch())
	assert.Equal(t, "main", Pipeline{Target: PipelineTarget{RefName: ptr("main")}}.Branch())
}
