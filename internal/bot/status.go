package bot

import "time"

type SupervisorStatus string

const (
	NotStarted      SupervisorStatus = "Not Started"
	Idle            SupervisorStatus = "Idle"
	Checking        SupervisorStatus = "Checking"
	Paused          SupervisorStatus = "Paused"
	OutsideSchedule SupervisorStatus = "Outside Schedule"
)

// Stats is a snapshot of what a supervisor has been doing.
type Stats struct {
	SupervisorStatus SupervisorStatus
	StartedAt        time.Time
	LastCheck        time.Time
	NextCheck        time.Time
	Checks           int
	Rewards          int
	LastError        string
}
