package control

import "time"

// Command is one operator control action.
type Command string

const (
	Stop    Command = "stop"
	Restart Command = "restart"
	Pause   Command = "pause"
	Resume  Command = "resume"
	Silence Command = "silence"
)

// Signal is a consumed control command. Until is only set for Silence.
type Signal struct {
	Command Command
	Until   time.Time
}

// Source is the narrow control port polled once per scheduler iteration. A
// returned signal is consumed: polling again must not return it twice.
type Source interface {
	Poll() ([]Signal, error)
}
