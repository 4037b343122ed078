package notifier

// Notifier is the minimal operator channel. Push is fire-and-forget from the
// caller's perspective; delivery failures are the implementation's problem.
type Notifier interface {
	Push(text string) error
}

// Nop swallows every message. Used when no channel is configured and in
// tests.
type Nop struct{}

func (Nop) Push(string) error { return nil }
