// Package events emits diagnosis and fix-session events to kafka so other
// systems (and the report consumer) can follow fleet health without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/remediation"
	"VCS_FMS_Microservice/pkg/infra"
)

type Publisher interface {
	PublishDiagnosis(ctx context.Context, report model.DiagnosisReport) error
	PublishFixSession(ctx context.Context, session remediation.FixSessionResult) error
}

type publisher struct {
	diagnosisWriter infra.KafkaWriter
	fixWriter       infra.KafkaWriter
}

func (p *publisher) PublishDiagnosis(ctx context.Context, report model.DiagnosisReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("EventPublisher.PublishDiagnosis: %w", err)
	}
	err = p.diagnosisWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.Instance),
		Value: b,
	})
	if err != nil {
		return fmt.Errorf("EventPublisher.PublishDiagnosis: %w", err)
	}
	return nil
}

func (p *publisher) PublishFixSession(ctx context.Context, session remediation.FixSessionResult) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("EventPublisher.PublishFixSession: %w", err)
	}
	err = p.fixWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(session.Instance),
		Value: b,
	})
	if err != nil {
		return fmt.Errorf("EventPublisher.PublishFixSession: %w", err)
	}
	return nil
}

func NewPublisher(diagnosisWriter, fixWriter infra.KafkaWriter) Publisher {
	return &publisher{
		diagnosisWriter: diagnosisWriter,
		fixWriter:       fixWriter,
	}
}
