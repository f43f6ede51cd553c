package game

// Status is the lifecycle state of a match.
type Status int

const (
	_ Status = iota
	// Waiting is the status of a match that has been created but not started; its countdown is armed.
	Waiting
	// InProgress is the status of a match that has started but has games left to play.
	InProgress
	// Completed is the status of a match whose configured number of games have all finished.
	Completed
	// Deleted is the status of a match that was removed before it could start.
	Deleted
)

// String returns the display value for the status.
func (s Status) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	case Deleted:
		return "deleted"
	}
	return "?"
}
