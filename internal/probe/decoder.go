package probe

import (
	"bufio"
	"strconv"
	"strings"
	"time"

	"VCS_FMS_Microservice/internal/diagnosis"
	"VCS_FMS_Microservice/internal/diagnosis/model"
)

// Wire grammar of the probe batch output:
//
//	report   = *section
//	section  = sentinel NL line NL
//	sentinel = "----FMSCHECK----"
//	line     = name SP token
//	token    = status [":" payload]
//	status   = "ok" | "warn" | "error" | "raw" | "http"
//
// "raw" carries an integer payload classified locally against the diagnosis
// thresholds (disk/memory percentage, checkpoint age in seconds). "http"
// carries the status code of the upstream API key probe. Anything else is a
// final status with an optional free-text detail payload.
//
// A malformed or missing section degrades to {error, "check failed"} for that
// check only; partial results are always returned.

const malformedDetail = "check failed"

// Decode parses the raw probe output into per-check results. Only names in
// expected are returned; expected checks absent from the output degrade to
// error state.
func Decode(output string, expected []string) []model.CheckResult {
	parsed := make(map[string]model.CheckResult)
	scanner := bufio.NewScanner(strings.NewReader(output))
	inSection := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == Sentinel {
			inSection = true
			continue
		}
		if !inSection || line == "" {
			continue
		}
		inSection = false
		name, result, ok := decodeLine(line)
		if ok {
			parsed[name] = result
		}
	}

	results := make([]model.CheckResult, 0, len(expected))
	for _, name := range expected {
		if result, ok := parsed[name]; ok {
			results = append(results, result)
			continue
		}
		results = append(results, model.CheckResult{
			Name:   name,
			Status: model.StatusError,
			Detail: malformedDetail,
		})
	}
	return results
}

func decodeLine(line string) (string, model.CheckResult, bool) {
	name, token, found := strings.Cut(line, " ")
	if !found || name == "" {
		return "", model.CheckResult{}, false
	}
	status, payload, _ := strings.Cut(token, ":")
	result := model.CheckResult{Name: name}
	switch status {
	case "ok", "warn", "error":
		result.Status = model.Status(status)
		result.Detail = payload
		if result.Detail == "" {
			result.Detail = string(result.Status)
		}
	case "raw":
		value, err := strconv.Atoi(strings.TrimSpace(payload))
		if err != nil {
			result.Status, result.Detail = model.StatusError, malformedDetail
			break
		}
		result.Status, result.Detail = classifyRaw(name, value)
	case "http":
		code, err := strconv.Atoi(strings.TrimSpace(payload))
		if err != nil {
			result.Status, result.Detail = model.StatusError, malformedDetail
			break
		}
		result.Status, result.Detail = diagnosis.ClassifyUpstreamStatus(code)
	default:
		result.Status, result.Detail = model.StatusError, malformedDetail
	}
	return name, result, true
}

func classifyRaw(name string, value int) (model.Status, string) {
	switch name {
	case model.CheckDiskSpace:
		return diagnosis.ClassifyDiskFree(value)
	case model.CheckMemory:
		return diagnosis.ClassifyMemFree(value)
	case model.CheckCheckpointAge:
		return diagnosis.ClassifyCheckpointAge(time.Duration(value) * time.Second)
	default:
		return model.StatusError, malformedDetail
	}
}
