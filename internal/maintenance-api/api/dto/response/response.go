package response

import "time"

type Response struct {
	Message string `json:"message"`
}

type ReportInfoResponse struct {
	Instance     string    `json:"instance"`
	IP           string    `json:"ip"`
	Timestamp    time.Time `json:"timestamp"`
	ChecksPassed int       `json:"checks_passed"`
	ChecksWarned int       `json:"checks_warned"`
	ChecksFailed int       `json:"checks_failed"`
}

type AvailabilityResponse struct {
	AvailabilityPercentage float64 `json:"availability_percentage"`
}
