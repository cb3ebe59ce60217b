// Package diagnosis turns raw probe check results into a DiagnosisReport and
// owns the numeric policy thresholds for metric checks, so cutoffs can be
// tuned without touching the probe collector.
package diagnosis

import (
	"fmt"
	"time"

	"VCS_FMS_Microservice/internal/diagnosis/model"
)

// Metric cutoffs. The comparison is strict less-than: a disk at exactly 20%
// free is warn, exactly 50% free is ok.
const (
	DiskFreeErrorPct = 20
	DiskFreeWarnPct  = 50

	MemFreeErrorPct = 10
	MemFreeWarnPct  = 20

	// Checkpoints older than this are stale. Exactly 24h is still ok.
	CheckpointMaxAge = 24 * time.Hour
)

// Aggregate builds a DiagnosisReport from the raw check results of one probe
// batch. It is a pure function of its inputs; Errors preserves the order in
// which failing checks were supplied.
func Aggregate(instance string, ip string, raw []model.CheckResult) model.DiagnosisReport {
	report := model.DiagnosisReport{
		Instance:  instance,
		IP:        ip,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]model.CheckResult, len(raw)),
	}
	for _, check := range raw {
		report.Checks[check.Name] = check
		switch check.Status {
		case model.StatusOK:
			report.ChecksPassed++
		case model.StatusWarn:
			report.ChecksWarned++
		default:
			report.ChecksFailed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", check.Name, check.Detail))
		}
	}
	return report
}

// ClassifyDiskFree maps a free-disk percentage to a check status.
func ClassifyDiskFree(freePct int) (model.Status, string) {
	detail := fmt.Sprintf("%d%% free", freePct)
	switch {
	case freePct < DiskFreeErrorPct:
		return model.StatusError, fmt.Sprintf("low disk space: %s", detail)
	case freePct < DiskFreeWarnPct:
		return model.StatusWarn, detail
	default:
		return model.StatusOK, detail
	}
}

// ClassifyMemFree maps a free-memory percentage to a check status.
func ClassifyMemFree(freePct int) (model.Status, string) {
	detail := fmt.Sprintf("%d%% free", freePct)
	switch {
	case freePct < MemFreeErrorPct:
		return model.StatusError, fmt.Sprintf("low memory: %s", detail)
	case freePct < MemFreeWarnPct:
		return model.StatusWarn, detail
	default:
		return model.StatusOK, detail
	}
}

// ClassifyCheckpointAge maps the age of the last successful checkpoint to a
// check status. A missing checkpoint reports zero age and is treated as ok;
// the session_store check covers the missing-file case.
func ClassifyCheckpointAge(age time.Duration) (model.Status, string) {
	detail := fmt.Sprintf("last checkpoint %.1fh ago", age.Hours())
	if age > CheckpointMaxAge {
		return model.StatusWarn, fmt.Sprintf("stale: %s", detail)
	}
	return model.StatusOK, detail
}

// ClassifyUpstreamStatus maps the HTTP status of the upstream API key probe.
func ClassifyUpstreamStatus(httpStatus int) (model.Status, string) {
	switch {
	case httpStatus == 200:
		return model.StatusOK, "api key valid"
	case httpStatus == 401 || httpStatus == 402:
		return model.StatusError, fmt.Sprintf("api key rejected (HTTP %d)", httpStatus)
	case httpStatus == 429:
		return model.StatusWarn, "rate limited (HTTP 429)"
	default:
		return model.StatusWarn, fmt.Sprintf("unexpected upstream response (HTTP %d)", httpStatus)
	}
}
