package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/remediation"
)

type Repository interface {
	SaveReport(ctx context.Context, report model.DiagnosisReport) error
	SaveFixSession(ctx context.Context, session remediation.FixSessionResult) error
	LatestReport(ctx context.Context, instance string) (model.DiagnosisReport, error)
	ListReports(ctx context.Context, instance string, limit, offset int) ([]DiagnosisRecord, error)
	// InstanceAvailability returns the share of recorded reports in the
	// window with zero failed checks, in percent.
	InstanceAvailability(ctx context.Context, instance string, start, end time.Time) (float64, error)
}

type repository struct {
	db *gorm.DB
}

const pgUniqueViolation = "23505"

func (r *repository) SaveReport(ctx context.Context, report model.DiagnosisReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("HistoryRepository.SaveReport: %w", err)
	}
	record := DiagnosisRecord{
		Instance:     report.Instance,
		IP:           report.IP,
		Timestamp:    report.Timestamp,
		ChecksPassed: report.ChecksPassed,
		ChecksWarned: report.ChecksWarned,
		ChecksFailed: report.ChecksFailed,
		Report:       string(raw),
	}
	result := r.db.WithContext(ctx).Create(&record)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("HistoryRepository.SaveReport: %w", ErrDuplicateReport)
		}
		return fmt.Errorf("HistoryRepository.SaveReport: %w", result.Error)
	}
	return nil
}

func (r *repository) SaveFixSession(ctx context.Context, session remediation.FixSessionResult) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("HistoryRepository.SaveFixSession: %w", err)
	}
	record := FixSessionRecord{
		SessionID:   session.SessionID,
		Instance:    session.Instance,
		Timestamp:   session.Timestamp,
		TotalErrors: session.TotalErrors,
		Fixed:       session.Fixed,
		Failed:      session.Failed,
		Escalated:   session.Escalated,
		Session:     string(raw),
	}
	if result := r.db.WithContext(ctx).Create(&record); result.Error != nil {
		return fmt.Errorf("HistoryRepository.SaveFixSession: %w", result.Error)
	}
	return nil
}

func (r *repository) LatestReport(ctx context.Context, instance string) (model.DiagnosisReport, error) {
	var record DiagnosisRecord
	result := r.db.WithContext(ctx).
		Where("instance = ?", instance).
		Order("timestamp DESC").
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.DiagnosisReport{}, fmt.Errorf("HistoryRepository.LatestReport: %w", ErrReportNotFound)
		}
		return model.DiagnosisReport{}, fmt.Errorf("HistoryRepository.LatestReport: %w", result.Error)
	}
	var report model.DiagnosisReport
	if err := json.Unmarshal([]byte(record.Report), &report); err != nil {
		return model.DiagnosisReport{}, fmt.Errorf("HistoryRepository.LatestReport: %w", err)
	}
	return report, nil
}

func (r *repository) ListReports(ctx context.Context, instance string, limit, offset int) ([]DiagnosisRecord, error) {
	query := r.db.WithContext(ctx)
	if instance != "" {
		query = query.Where("instance = ?", instance)
	}
	var records []DiagnosisRecord
	result := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("HistoryRepository.ListReports: %w", result.Error)
	}
	return records, nil
}

func (r *repository) InstanceAvailability(ctx context.Context, instance string, start, end time.Time) (float64, error) {
	var res struct {
		Total   int64
		Healthy int64
	}
	result := r.db.WithContext(ctx).
		Model(&DiagnosisRecord{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE checks_failed = 0) AS healthy").
		Where("instance = ? AND timestamp >= ? AND timestamp < ?", instance, start, end).
		Scan(&res)
	if result.Error != nil {
		return 0, fmt.Errorf("HistoryRepository.InstanceAvailability: %w", result.Error)
	}
	if res.Total == 0 {
		return 0, fmt.Errorf("HistoryRepository.InstanceAvailability: %w", ErrReportNotFound)
	}
	return float64(res.Healthy) * 100 / float64(res.Total), nil
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}
