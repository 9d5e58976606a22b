package pipeline

// artifactDone reports, from artifacts alone, which steps have
// completed output on disk.
func artifactDone(a Artifacts) map[StepID]bool {
	done := map[StepID]bool{
		StepExtract:    len(a.Segments) > 0,
		StepUpload:     a.UploadManifest != "",
		StepTranscribe: len(a.Responses) > 0 && a.WordsVersion >= 1,
		StepMerge:      a.WordsVersion >= 2,
		StepMuteList:   a.MuteList != "",
		StepApply:      a.CleanVideo != "",
	}
	return done
}

// DetectStates derives each step's status from artifacts. A later
// step's artifact implies the earlier steps ran even if their outputs
// were cleaned up since, so completion is inferred backward. The merge
// step is opt-in and its artifact is versioned rather than required,
// so it neither receives nor grants inferred completion.
func DetectStates(a Artifacts) []StepState {
	done := artifactDone(a)

	// Backward inference: the latest step with an artifact marks all
	// earlier steps (except merge) done.
	latest := StepID(0)
	for _, step := range AllSteps {
		if step == StepMerge {
			continue
		}
		if done[step] {
			latest = step
		}
	}

	states := make([]StepState, 0, len(AllSteps))
	for _, step := range AllSteps {
		state := StepState{ID: step, Status: StatusPending}
		switch {
		case done[step]:
			state.Status = StatusDone
		case step != StepMerge && step < latest:
			state.Status = StatusDone
			state.Detail = "inferred from later artifact"
		}
		states = append(states, state)
	}
	return states
}

// stateByID returns the state for a step.
func stateByID(states []StepState, id StepID) StepState {
	for _, state := range states {
		if state.ID == id {
			return state
		}
	}
	return StepState{ID: id, Status: StatusPending}
}
