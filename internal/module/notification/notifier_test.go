package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/httpclient"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhook struct {
	mu       sync.Mutex
	received []Envelope
	topics   []string
}

func (w *webhook) server(t *testing.T, status int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var env Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err == nil {
			w.mu.Lock()
			w.received = append(w.received, env)
			w.topics = append(w.topics, r.Header.Get("X-Event-Topic"))
			w.mu.Unlock()
		}
		rw.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (w *webhook) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.received)
}

func TestDeliversSubscribedEvents(t *testing.T) {
	hook := &webhook{}
	srv := hook.server(t, http.StatusNoContent)

	bus := eventbus.New(slog.Default())
	t.Cleanup(func() { _ = bus.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	n := NewNotifier(httpclient.New(config.Notify{TimeoutMs: 2000}), srv.URL, slog.Default())
	require.NoError(t, n.Start(ctx, bus))

	require.NoError(t, bus.Publish(ctx, eventbus.TopicEvaluationRecorded, eventbus.EvaluationRecorded{SubmissionID: 7, Score: 88}))
	require.NoError(t, bus.Publish(ctx, eventbus.TopicMemberJoined, eventbus.MemberJoined{TeamID: 3, UserID: 4}))

	require.Eventually(t, func() bool { return hook.count() == 2 }, 5*time.Second, 20*time.Millisecond)

	hook.mu.Lock()
	defer hook.mu.Unlock()
	assert.ElementsMatch(t, []string{eventbus.TopicEvaluationRecorded, eventbus.TopicMemberJoined}, hook.topics)
	for _, env := range hook.received {
		if env.Topic != eventbus.TopicEvaluationRecorded {
			continue
		}
		var payload eventbus.EvaluationRecorded
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, uint(7), payload.SubmissionID)
		assert.NotEmpty(t, env.ID)
	}
}

func TestWebhookFailure(t *testing.T) {
	hook := &webhook{}
	srv := hook.server(t, http.StatusBadGateway)
	n := NewNotifier(httpclient.New(config.Notify{}), srv.URL, slog.Default())

	msg := message.NewMessage("m-1", []byte(`{"submission_id":1}`))
	err := n.Handle(eventbus.TopicSubmissionCreated)(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, 1, hook.count())
}

func TestWithoutWebhook(t *testing.T) {
	n := NewNotifier(httpclient.New(config.Notify{}), "", slog.Default())
	msg := message.NewMessage("m-2", []byte(`{}`))
	assert.NoError(t, n.Handle(eventbus.TopicMemberJoined)(context.Background(), msg))
}
