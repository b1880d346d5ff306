package domain

// CancelKind identifies the reason a cancellation was requested. There is
// a single kind today; the type exists so more can be added without
// touching subscribers.
type CancelKind string

const (
	// KindInterrupt means the process received SIGINT (Ctrl-C).
	KindInterrupt CancelKind = "interrupt"
)

// Signal is the cancellation notification broadcast to every subscribed
// worker. Each subscriber receives its own copy.
type Signal struct {
	Kind CancelKind
}
