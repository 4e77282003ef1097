package project

// Stage is the project's kanban stage
type Stage string

const (
	StageToDo       Stage = "to_do"
	StageInProgress Stage = "in_progress"
	StageDone       Stage = "done"
	StageCancelled  Stage = "cancelled"
)

// IsValid checks if the stage is known
func (s Stage) IsValid() bool {
	switch s {
	case StageToDo, StageInProgress, StageDone, StageCancelled:
		return true
	}
	return false
}

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// AllowsEditing reports whether project fields other than the stage may be
// modified. Only "To Do" projects are editable.
func (s Stage) AllowsEditing() bool {
	return s == StageToDo
}
