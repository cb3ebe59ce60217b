package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/remediation"
	"VCS_FMS_Microservice/pkg/infra"
)

func TestPublishDiagnosis(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	diagnosisWriter := infra.NewMockKafkaWriter(ctrl)
	fixWriter := infra.NewMockKafkaWriter(ctrl)

	report := model.DiagnosisReport{
		Instance:     "gw-prod-1",
		IP:           "10.0.0.11",
		Timestamp:    time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		ChecksPassed: 13,
	}

	var written kafka.Message
	diagnosisWriter.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			written = msgs[0]
			return nil
		})

	p := NewPublisher(diagnosisWriter, fixWriter)
	err := p.PublishDiagnosis(context.Background(), report)
	require.NoError(t, err)

	assert.Equal(t, "gw-prod-1", string(written.Key))
	var decoded model.DiagnosisReport
	require.NoError(t, json.Unmarshal(written.Value, &decoded))
	assert.Equal(t, report.Instance, decoded.Instance)
	assert.Equal(t, report.ChecksPassed, decoded.ChecksPassed)
}

func TestPublishDiagnosisWriterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	diagnosisWriter := infra.NewMockKafkaWriter(ctrl)
	fixWriter := infra.NewMockKafkaWriter(ctrl)

	diagnosisWriter.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		Return(errors.New("broker unavailable"))

	p := NewPublisher(diagnosisWriter, fixWriter)
	err := p.PublishDiagnosis(context.Background(), model.DiagnosisReport{Instance: "gw-prod-1"})
	assert.ErrorContains(t, err, "EventPublisher.PublishDiagnosis")
	assert.ErrorContains(t, err, "broker unavailable")
}

func TestPublishFixSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	diagnosisWriter := infra.NewMockKafkaWriter(ctrl)
	fixWriter := infra.NewMockKafkaWriter(ctrl)

	session := remediation.FixSessionResult{
		Instance: "gw-prod-2",
		Fixed:    1,
	}

	var written kafka.Message
	fixWriter.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			written = msgs[0]
			return nil
		})

	p := NewPublisher(diagnosisWriter, fixWriter)
	err := p.PublishFixSession(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, "gw-prod-2", string(written.Key))
	var decoded remediation.FixSessionResult
	require.NoError(t, json.Unmarshal(written.Value, &decoded))
	assert.Equal(t, session.Instance, decoded.Instance)
	assert.Equal(t, session.Fixed, decoded.Fixed)
}

func TestPublishFixSessionWriterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	diagnosisWriter := infra.NewMockKafkaWriter(ctrl)
	fixWriter := infra.NewMockKafkaWriter(ctrl)

	fixWriter.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		Return(errors.New("commit timeout"))

	p := NewPublisher(diagnosisWriter, fixWriter)
	err := p.PublishFixSession(context.Background(), remediation.FixSessionResult{Instance: "gw-prod-2"})
	assert.ErrorContains(t, err, "EventPublisher.PublishFixSession")
}
