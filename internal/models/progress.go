package models

type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"` // e.g. "in_progress", "complete", "error"
	// Optional fields for more detailed updates
	Failed int  `json:"failed,omitempty"`
	Done   bool `json:"done"`
}

// ConnectivityUpdate is broadcast whenever the online/offline state flips.
type ConnectivityUpdate struct {
	Type   string `json:"type"` // always "connectivity"
	Online bool   `json:"online"`
}
