package fleetctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/events"
	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/internal/remediation"
	"VCS_FMS_Microservice/internal/sweep"
	"VCS_FMS_Microservice/internal/watchdog"
	"VCS_FMS_Microservice/pkg/remote"
)

// Output formats accepted by the --output flag.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// RunDiagnose probes one instance, prints the report and, when an event
// publisher is wired, records the diagnosis on the event stream. A report
// with failing checks is still a successful command run; an unreachable
// channel is still printed but returned as the command error so the process
// exits non-zero.
func RunDiagnose(ctx context.Context, collector probe.Collector, publisher events.Publisher,
	host remote.Host, format string, w io.Writer, logger *zap.Logger) error {
	report, err := collector.Collect(ctx, host)
	if err != nil {
		logger.Warn("instance unreachable, reporting connectivity failure",
			zap.String("instance", host.Name), zap.Error(err))
	}
	if publisher != nil {
		if pubErr := publisher.PublishDiagnosis(ctx, report); pubErr != nil {
			logger.Warn("failed to publish diagnosis event", zap.Error(pubErr))
		}
	}
	switch format {
	case FormatJSON:
		if outErr := outputJSON(report, w); outErr != nil {
			return outErr
		}
	case FormatTable:
		if outErr := outputReportTable(report, w); outErr != nil {
			return outErr
		}
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("diagnose %s: %w", host.Name, err)
	}
	return nil
}

// RunFix diagnoses the instance and drives remediation for every failing
// check, then prints the fix session.
func RunFix(ctx context.Context, collector probe.Collector, orchestrator remediation.Orchestrator,
	publisher events.Publisher, host remote.Host, channelID, format string, w io.Writer,
	logger *zap.Logger) error {
	report, err := collector.Collect(ctx, host)
	if err != nil {
		return fmt.Errorf("fix %s: %w", host.Name, err)
	}
	session := orchestrator.Fix(ctx, host, channelID, report)
	if publisher != nil {
		if pubErr := publisher.PublishFixSession(ctx, session); pubErr != nil {
			logger.Warn("failed to publish fix session event", zap.Error(pubErr))
		}
	}
	switch format {
	case FormatJSON:
		return outputJSON(session, w)
	case FormatTable:
		return outputSessionTable(session, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// RunSweep probes the whole fleet concurrently and prints the per instance
// status map. When excelPath is set the report is additionally written as a
// spreadsheet.
func RunSweep(ctx context.Context, sweeper sweep.Sweeper, hosts []remote.Host,
	concurrency int, perHostTimeout time.Duration, format, excelPath string, w io.Writer) error {
	report := sweeper.Sweep(ctx, hosts, concurrency, perHostTimeout)
	if excelPath != "" {
		if err := writeSweepExcel(report, excelPath); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		fmt.Fprintf(w, "report written to %s\n", excelPath)
	}
	switch format {
	case FormatJSON:
		return outputJSON(report, w)
	case FormatTable:
		return outputSweepTable(report, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// RunWatchdogTick runs a single watchdog pass and prints the resulting
// state.
func RunWatchdogTick(ctx context.Context, wd watchdog.Watchdog, w io.Writer) error {
	state, err := wd.Tick(ctx)
	if err != nil {
		return fmt.Errorf("watchdog tick: %w", err)
	}
	return outputJSON(state, w)
}

func outputJSON(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputReportTable(report model.DiagnosisReport, w io.Writer) error {
	fmt.Fprintf(w, "Instance: %s (%s)\n", report.Instance, report.IP)
	fmt.Fprintf(w, "Time:     %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Checks:   %d passed, %d warned, %d failed\n\n",
		report.ChecksPassed, report.ChecksWarned, report.ChecksFailed)

	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check := report.Checks[name]
		fmt.Fprintf(w, "  %-7s %-20s %s\n", check.Status, name, check.Detail)
	}
	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	return nil
}

func outputSessionTable(session remediation.FixSessionResult, w io.Writer) error {
	fmt.Fprintf(w, "Session:  %s\n", session.SessionID)
	fmt.Fprintf(w, "Instance: %s\n", session.Instance)
	fmt.Fprintf(w, "Errors:   %d total, %d fixed, %d failed, %d escalated\n",
		session.TotalErrors, session.Fixed, session.Failed, session.Escalated)
	if len(session.Fixes) > 0 {
		fmt.Fprintln(w, "\nAttempts:")
		for _, attempt := range session.Fixes {
			fmt.Fprintf(w, "  %-20s #%d %-6s %s\n",
				attempt.CheckName, attempt.AttemptNumber, attempt.Outcome, attempt.MethodDescription)
		}
	}
	for _, escalation := range session.Escalations {
		fmt.Fprintf(w, "\nEscalated %s after %d attempts (notified: %v)\n",
			escalation.CheckName, len(escalation.AttemptsTried), escalation.NotifiedChannels)
	}
	return nil
}

func outputSweepTable(report sweep.FleetReport, w io.Writer) error {
	instances := make([]string, 0, len(report.PerInstance))
	for instance := range report.PerInstance {
		instances = append(instances, instance)
	}
	sort.Strings(instances)
	for _, instance := range instances {
		fmt.Fprintf(w, "  %-30s %s\n", instance, report.PerInstance[instance])
	}
	fmt.Fprintf(w, "\n%d instances, generated at %s\n",
		len(instances), report.GeneratedAt.Format(time.RFC3339))
	return nil
}

func writeSweepExcel(report sweep.FleetReport, path string) error {
	file := excelize.NewFile()
	defer file.Close()
	sheetName := "Fleet"
	index, err := file.NewSheet(sheetName)
	if err != nil {
		return err
	}
	headers := []interface{}{"instance", "status", "generated_at"}
	if err = file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}
	instances := make([]string, 0, len(report.PerInstance))
	for instance := range report.PerInstance {
		instances = append(instances, instance)
	}
	sort.Strings(instances)
	for i, instance := range instances {
		rowData := []interface{}{
			instance,
			string(report.PerInstance[instance]),
			report.GeneratedAt.Format("2006-01-02 15:04:05"),
		}
		if err = file.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &rowData); err != nil {
			return err
		}
	}
	file.SetActiveSheet(index)
	return file.SaveAs(path)
}
