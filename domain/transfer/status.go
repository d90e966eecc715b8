package transfer

type Kind string

const (
	KindUpload   Kind = "upload"
	KindDownload Kind = "download"
)

type Status string

const (
	StatusPending            Status = "PENDING"
	StatusCalculating        Status = "CALCULATING"
	StatusUploading          Status = "UPLOADING"
	StatusFetchingURL        Status = "FETCHING_URL"
	StatusDownloading        Status = "DOWNLOADING"
	StatusPaused             Status = "PAUSED"
	StatusCompleted          Status = "COMPLETED"
	StatusFailed             Status = "FAILED"
	StatusCancelled          Status = "CANCELLED"
	StatusExpired            Status = "EXPIRED"
	StatusVerificationFailed Status = "VERIFICATION_FAILED"
)

// IsTerminal reports whether the task needs a retry to move again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired, StatusVerificationFailed:
		return true
	}
	return false
}

// IsInFlight reports whether a runner is working on the task.
func (s Status) IsInFlight() bool {
	switch s {
	case StatusCalculating, StatusUploading, StatusFetchingURL, StatusDownloading:
		return true
	}
	return false
}

var uploadTransitions = map[Status][]Status{
	StatusPending:            {StatusCalculating, StatusUploading, StatusPaused},
	StatusCalculating:        {StatusUploading, StatusPaused},
	StatusUploading:          {StatusCompleted, StatusVerificationFailed, StatusPaused},
	StatusPaused:             {StatusPending},
	StatusFailed:             {StatusPending},
	StatusCancelled:          {StatusPending},
	StatusExpired:            {StatusPending},
	StatusVerificationFailed: {StatusPending},
}

var downloadTransitions = map[Status][]Status{
	StatusPending:     {StatusFetchingURL, StatusPaused},
	StatusFetchingURL: {StatusDownloading, StatusPaused},
	StatusDownloading: {StatusCompleted, StatusPaused},
	StatusPaused:      {StatusPending},
	StatusFailed:      {StatusPending},
	StatusCancelled:   {StatusPending},
	StatusExpired:     {StatusPending},
}

// CanTransition checks a status change against the table of the task kind.
// Staying in the same status is always allowed.
func CanTransition(kind Kind, from, to Status) bool {
	if from == to {
		return true
	}
	table := uploadTransitions
	if kind == KindDownload {
		table = downloadTransitions
	}
	if _, known := table[from]; !known && from != StatusCompleted {
		return false
	}
	switch to {
	case StatusFailed, StatusCancelled, StatusExpired:
		// reachable from everything except COMPLETED
		return from != StatusCompleted
	}
	for _, allowed := range table[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
