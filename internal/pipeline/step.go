// Package pipeline orchestrates the six step cleaning workflow:
// extract audio, upload it, transcribe, optionally merge subtitles,
// build the mute list, and apply it. Every step is idempotent; status
// is derived from which artifacts exist on disk, so an interrupted run
// resumes where it stopped.
package pipeline

import "fmt"

// StepID identifies a pipeline step. Values are ordered; a later step
// consumes the artifacts of earlier ones.
type StepID int

const (
	StepExtract StepID = iota + 1
	StepUpload
	StepTranscribe
	StepMerge
	StepMuteList
	StepApply
)

// AllSteps lists the steps in execution order.
var AllSteps = []StepID{StepExtract, StepUpload, StepTranscribe, StepMerge, StepMuteList, StepApply}

func (s StepID) String() string {
	switch s {
	case StepExtract:
		return "extract"
	case StepUpload:
		return "upload"
	case StepTranscribe:
		return "transcribe"
	case StepMerge:
		return "merge"
	case StepMuteList:
		return "mutelist"
	case StepApply:
		return "apply"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ParseStep resolves a step name or 1-based number.
func ParseStep(value string) (StepID, error) {
	for _, step := range AllSteps {
		if step.String() == value {
			return step, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
		if n >= int(StepExtract) && n <= int(StepApply) {
			return StepID(n), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", value)
}

// Status is a step's state for one video.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusRunning Status = "running"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// StepState pairs a step with its current status and an optional
// human readable detail.
type StepState struct {
	ID     StepID
	Status Status
	Detail string
}
