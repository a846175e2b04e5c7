package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/metrics"
	"hackathon-platform/internal/global/sentry/tracing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Topics 需要转发到 webhook 的事件
var Topics = []string{
	eventbus.TopicSubmissionCreated,
	eventbus.TopicEvaluationRecorded,
	eventbus.TopicMemberJoined,
}

// Envelope webhook 请求体
type Envelope struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Notifier 订阅领域事件并以 webhook 形式投递，url 为空时只记录日志
type Notifier struct {
	client *resty.Client
	url    string
	log    *slog.Logger
}

func NewNotifier(client *resty.Client, url string, log *slog.Logger) *Notifier {
	return &Notifier{client: client, url: url, log: log}
}

func (n *Notifier) Start(ctx context.Context, bus *eventbus.Bus) error {
	for _, topic := range Topics {
		if err := bus.Subscribe(ctx, topic, n.Handle(topic)); err != nil {
			return err
		}
	}
	n.log.Info("通知订阅已启动", "topics", Topics, "webhook", n.url != "")
	return nil
}

func (n *Notifier) Handle(topic string) func(ctx context.Context, msg *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		n.log.Info("收到事件", "topic", topic, "uuid", msg.UUID, "payload", string(msg.Payload))
		if n.url == "" {
			metrics.NotificationsSent.WithLabelValues(topic, "skipped").Inc()
			return nil
		}

		resp, err := n.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader(tracing.TopicHeader, topic).
			SetBody(Envelope{ID: msg.UUID, Topic: topic, Payload: json.RawMessage(msg.Payload)}).
			Post(n.url)
		if err != nil {
			metrics.NotificationsSent.WithLabelValues(topic, "failed").Inc()
			return errors.Wrapf(err, "post webhook for %s", topic)
		}
		if resp.IsError() {
			metrics.NotificationsSent.WithLabelValues(topic, "failed").Inc()
			return errors.Errorf("webhook 返回 %d", resp.StatusCode())
		}
		metrics.NotificationsSent.WithLabelValues(topic, "delivered").Inc()
		return nil
	}
}
