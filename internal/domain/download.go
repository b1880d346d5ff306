package domain

// DownloadState represents the current state of a single download as
// recorded in the state store.
type DownloadState string

const (
	StateDownloading DownloadState = "downloading"
	StateCompleted   DownloadState = "completed"
	StateFailed      DownloadState = "failed"
	StateInterrupted DownloadState = "interrupted"
)

// Terminal reports whether the state is absorbing. Once a download reaches
// a terminal state it is never updated again within a run.
func (s DownloadState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateInterrupted:
		return true
	}
	return false
}

// TransferStatus is how a transfer ended when it did not error.
type TransferStatus string

const (
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// Outcome is produced exactly once per worker and consumed by the
// orchestrator. Err is set when the transfer or a state-store write failed;
// Status is meaningful only when Err is nil.
type Outcome struct {
	URL    string
	Path   string
	Status TransferStatus
	Err    error
}
