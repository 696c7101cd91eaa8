package domain

import "time"

// AnonymousRequester is recorded when the request carried no auth context.
const AnonymousRequester = "anonymous"

// AccessLog is a single audited request.
type AccessLog struct {
	ID          string    `json:"id"`
	Endpoint    string    `json:"endpoint"`
	Method      string    `json:"method"`
	RequesterID string    `json:"requester_id"`
	TargetID    *string   `json:"target_id,omitempty"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	StatusCode  int       `json:"status_code"`
	LatencyMS   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
