package report_consumer

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/history"
	mock_history "VCS_FMS_Microservice/internal/history/mocks"
	"VCS_FMS_Microservice/pkg/infra"
)

func sampleEvent(t *testing.T) []byte {
	t.Helper()
	report := model.DiagnosisReport{
		Instance:     "gw-prod-1",
		IP:           "10.0.0.11",
		Timestamp:    time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		ChecksPassed: 12,
		ChecksFailed: 1,
		Errors:       []string{"health_endpoint: connection refused"},
	}
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestReportConsumer_Start(t *testing.T) {
	testCases := []struct {
		name       string
		setupMocks func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte)
	}{
		{
			name: "Stores valid diagnosis event and commits",
			setupMocks: func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte) {
				msg := kafka.Message{Value: value}
				gomock.InOrder(
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
					mockRepo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Return(nil),
					mockReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
		},
		{
			name: "Continues after fetch error",
			setupMocks: func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte) {
				msg := kafka.Message{Value: value}
				gomock.InOrder(
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, errors.New("broker unavailable")),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
					mockRepo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Return(nil),
					mockReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
		},
		{
			name: "Commits empty message without storing",
			setupMocks: func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte) {
				msg := kafka.Message{}
				gomock.InOrder(
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
					mockReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
		},
		{
			name: "Commits malformed payload without storing",
			setupMocks: func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte) {
				msg := kafka.Message{Value: []byte("{not json")}
				gomock.InOrder(
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
					mockReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
		},
		{
			name: "Drops duplicate delivery quietly",
			setupMocks: func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte) {
				msg := kafka.Message{Value: value}
				gomock.InOrder(
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
					mockRepo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Return(history.ErrDuplicateReport),
					mockReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
		},
		{
			name: "Leaves offset uncommitted when store fails",
			setupMocks: func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte) {
				msg := kafka.Message{Value: value}
				// no CommitMessages expectation: the event must stay on the
				// partition for redelivery
				gomock.InOrder(
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
					mockRepo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
		},
		{
			name: "Continues after commit failure",
			setupMocks: func(mockReader *infra.MockKafkaReader, mockRepo *mock_history.MockRepository, value []byte) {
				msg := kafka.Message{Value: value}
				gomock.InOrder(
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
					mockRepo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Return(nil),
					mockReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(errors.New("commit timeout")),
					mockReader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			mockReader := infra.NewMockKafkaReader(ctrl)
			mockRepo := mock_history.NewMockRepository(ctrl)
			tc.setupMocks(mockReader, mockRepo, sampleEvent(t))
			consumer := NewReportConsumer(mockReader, mockRepo, zap.NewNop())
			consumer.Start()
			time.Sleep(50 * time.Millisecond)
		})
	}
}

func TestReportConsumer_Stop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockReader := infra.NewMockKafkaReader(ctrl)
	mockRepo := mock_history.NewMockRepository(ctrl)
	mockReader.EXPECT().Close().Times(1)
	consumer := NewReportConsumer(mockReader, mockRepo, zap.NewNop())
	consumer.Stop()
}
