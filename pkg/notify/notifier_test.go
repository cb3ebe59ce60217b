package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

func TestChatSinkSendMessage(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer chat-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewChatSink(srv.URL, "chat-token", time.Second)
	err := sink.SendMessage(context.Background(), "ops", "gateway down")
	require.NoError(t, err)
	assert.Equal(t, "ops", received["channel_id"])
	assert.Equal(t, "gateway down", received["text"])
}

func TestChatSinkSendMessageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewChatSink(srv.URL, "", time.Second)
	err := sink.SendMessage(context.Background(), "ops", "gateway down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

type mockDialer struct {
	messages []*mail.Message
	err      error
}

func (m *mockDialer) DialAndSend(msgs ...*mail.Message) error {
	m.messages = append(m.messages, msgs...)
	return m.err
}

func TestMailSenderSendMail(t *testing.T) {
	dialer := &mockDialer{}
	sender := &mailSender{email: "fms@example.com", dialer: dialer}

	err := sender.SendMail([]string{"oncall@example.com"}, "escalation", "", "details")
	require.NoError(t, err)
	require.Len(t, dialer.messages, 1)
	assert.Equal(t, []string{"fms@example.com"}, dialer.messages[0].GetHeader("From"))
	assert.Equal(t, []string{"oncall@example.com"}, dialer.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"escalation"}, dialer.messages[0].GetHeader("Subject"))
}

type fakeSink struct {
	channelIDs []string
	texts      []string
	err        error
}

func (f *fakeSink) SendMessage(ctx context.Context, channelID string, text string) error {
	f.channelIDs = append(f.channelIDs, channelID)
	f.texts = append(f.texts, text)
	return f.err
}

type fakeMail struct {
	to  [][]string
	err error
}

func (f *fakeMail) SendMail(to []string, subject, htmlBody, textBody string) error {
	f.to = append(f.to, to)
	return f.err
}

func TestNotifierFanOut(t *testing.T) {
	testCases := []struct {
		name              string
		chatErr           error
		mailErr           error
		expectedDelivered []string
	}{
		{"both deliver", nil, nil, []string{ChannelChat, ChannelEmail}},
		{"chat fails, email still delivers", errors.New("webhook down"), nil, []string{ChannelEmail}},
		{"email fails, chat still delivers", nil, errors.New("smtp down"), []string{ChannelChat}},
		{"both fail", errors.New("webhook down"), errors.New("smtp down"), nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chat := &fakeSink{err: tc.chatErr}
			mailSink := &fakeMail{err: tc.mailErr}
			n := NewNotifier(chat, mailSink, "oncall@example.com", zap.NewNop())

			delivered := n.Notify(context.Background(), "ops", "subject", "text")
			assert.Equal(t, tc.expectedDelivered, delivered)
		})
	}
}

func TestNotifierNilChannels(t *testing.T) {
	t.Run("no channels configured", func(t *testing.T) {
		n := NewNotifier(nil, nil, "", zap.NewNop())
		assert.Empty(t, n.Notify(context.Background(), "ops", "subject", "text"))
	})

	t.Run("mail configured without recipient is skipped", func(t *testing.T) {
		mailSink := &fakeMail{}
		n := NewNotifier(nil, mailSink, "", zap.NewNop())
		assert.Empty(t, n.Notify(context.Background(), "ops", "subject", "text"))
		assert.Empty(t, mailSink.to)
	})
}

func TestNotifierChatMessageCarriesSubject(t *testing.T) {
	chat := &fakeSink{}
	n := NewNotifier(chat, nil, "", zap.NewNop())

	n.Notify(context.Background(), "ops", "ESCALATION: disk", "details here")
	require.Len(t, chat.texts, 1)
	assert.Equal(t, "ESCALATION: disk\ndetails here", chat.texts[0])
	assert.Equal(t, []string{"ops"}, chat.channelIDs)
}
