package report_consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/history"
	"VCS_FMS_Microservice/pkg/infra"
)

// ReportConsumer drains the diagnosis event topic into the history store.
type ReportConsumer interface {
	Start()
	Stop()
}

type reportConsumer struct {
	kafkaReader infra.KafkaReader
	repo        history.Repository
	logger      *zap.Logger
}

func (r *reportConsumer) Start() {
	go func() {
		for {
			m, err := r.kafkaReader.FetchMessage(context.Background())
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				err = fmt.Errorf("ReportConsumer.Start: %w", err)
				r.logger.Error("failed to fetch message", zap.Error(err))
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err = r.handle(ctx, m.Value); err != nil {
				// Leave the offset uncommitted so the event is redelivered
				// once the store is reachable again.
				r.logger.Error("failed to store diagnosis event",
					zap.Error(fmt.Errorf("ReportConsumer.Start: %w", err)))
				cancel()
				continue
			}
			if err = r.kafkaReader.CommitMessages(ctx, m); err != nil {
				err = fmt.Errorf("ReportConsumer.Start: %w", err)
				r.logger.Error("failed to commit messages", zap.Error(err))
			}
			cancel()
		}
	}()
}

// handle stores one diagnosis event. Malformed payloads and duplicate
// deliveries are logged and dropped so the partition keeps moving; a nil
// return means the offset is safe to commit. Storage failures are returned
// instead, holding the offset for redelivery.
func (r *reportConsumer) handle(ctx context.Context, value []byte) error {
	if len(value) == 0 {
		return nil
	}
	var report model.DiagnosisReport
	if err := json.Unmarshal(value, &report); err != nil {
		r.logger.Error("dropping malformed diagnosis event",
			zap.Error(fmt.Errorf("ReportConsumer.handle: %w", err)))
		return nil
	}
	if err := r.repo.SaveReport(ctx, report); err != nil {
		if errors.Is(err, history.ErrDuplicateReport) {
			r.logger.Debug("diagnosis event already recorded",
				zap.String("instance", report.Instance))
			return nil
		}
		return fmt.Errorf("ReportConsumer.handle: %w", err)
	}
	return nil
}

func (r *reportConsumer) Stop() {
	r.kafkaReader.Close()
}

func NewReportConsumer(kafkaReader infra.KafkaReader, repo history.Repository, logger *zap.Logger) ReportConsumer {
	return &reportConsumer{
		kafkaReader: kafkaReader,
		repo:        repo,
		logger:      logger,
	}
}
