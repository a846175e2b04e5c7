// Package eventbus 进程内领域事件总线，基于 watermill gochannel
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
)

const (
	TopicSubmissionCreated  = "submission.created"
	TopicEvaluationRecorded = "evaluation.recorded"
	TopicMemberJoined       = "team.member_joined"
)

// Publisher service 层依赖的发布接口
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type discard struct{}

func (discard) Publish(context.Context, string, any) error { return nil }

// Discard 丢弃所有事件，用于未启用总线的场景
var Discard Publisher = discard{}

// Active 返回 Default，总线未初始化时返回 Discard
func Active() Publisher {
	if Default == nil {
		return Discard
	}
	return Default
}

type SubmissionCreated struct {
	SubmissionID uint      `json:"submission_id"`
	EventID      uint      `json:"event_id"`
	TeamID       uint      `json:"team_id"`
	Status       string    `json:"status"`
	At           time.Time `json:"at"`
}

type EvaluationRecorded struct {
	EvaluationID     uint      `json:"evaluation_id"`
	SubmissionID     uint      `json:"submission_id"`
	EventID          uint      `json:"event_id"`
	JudgeID          uint      `json:"judge_id"`
	Round            int       `json:"round"`
	Score            float64   `json:"score"`
	Created          bool      `json:"created"`
	AverageScore     *float64  `json:"average_score"`
	TotalEvaluations int       `json:"total_evaluations"`
	At               time.Time `json:"at"`
}

type MemberJoined struct {
	TeamID  uint      `json:"team_id"`
	EventID uint      `json:"event_id"`
	UserID  uint      `json:"user_id"`
	Role    string    `json:"role"`
	At      time.Time `json:"at"`
}

type Bus struct {
	pubsub *gochannel.GoChannel
	log    *slog.Logger
}

var Default *Bus

func Init(log *slog.Logger) {
	Default = New(log)
}

func New(log *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermill.NewSlogLogger(log)),
		log:    log,
	}
}

// Publish 序列化 payload 并发布；没有订阅者时消息被丢弃。
// 消息不携带发布方的 ctx，请求结束后投递照常进行
func (b *Bus) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "marshal %s payload", topic)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}
	b.log.Debug("事件已发布", "topic", topic, "uuid", msg.UUID)
	return nil
}

// Subscribe 在后台 goroutine 中逐条处理 topic 的消息，直到 ctx 结束。
// handle 收到的是订阅方的 ctx；处理失败只记录日志并 Ack，gochannel 的 Nack 会立即重投
func (b *Bus) Subscribe(ctx context.Context, topic string, handle func(ctx context.Context, msg *message.Message) error) error {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", topic)
	}
	go func() {
		for msg := range messages {
			if err := handle(ctx, msg); err != nil {
				b.log.Warn("事件处理失败", "topic", topic, "uuid", msg.UUID, "error", err)
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
