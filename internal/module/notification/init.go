package notification

import (
	"context"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/httpclient"
	"hackathon-platform/internal/global/logger"

	"github.com/gin-gonic/gin"
)

var log = logger.New("Notification")

type ModuleNotification struct{}

func (m *ModuleNotification) GetName() string {
	return "Notification"
}

// Init 在事件总线上注册订阅，总线关闭时订阅随之结束
func (m *ModuleNotification) Init() {
	log = logger.New("Notification")
	if eventbus.Default == nil {
		log.Warn("事件总线未初始化，跳过通知订阅")
		return
	}
	n := NewNotifier(httpclient.Client, config.Get().Notify.WebhookURL, log)
	if err := n.Start(context.Background(), eventbus.Default); err != nil {
		log.Error("通知订阅失败", "error", err)
	}
}

func (m *ModuleNotification) InitRouter(*gin.RouterGroup) {}
