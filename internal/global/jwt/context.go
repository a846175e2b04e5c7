package jwt

import (
	"hackathon-platform/internal/policy"

	"github.com/gin-gonic/gin"
)

const PayloadKey = "payload"

func GetUserPayload(c *gin.Context) (userPayload *Claims, exist bool) {
	payload, _ := c.Get(PayloadKey)
	userPayload, exist = payload.(*Claims)
	return
}

// GetSubject 当前调用者的身份，未登录时 exist 为 false
func GetSubject(c *gin.Context) (sub policy.Subject, exist bool) {
	payload, exist := GetUserPayload(c)
	if !exist {
		return policy.Subject{}, false
	}
	return policy.Subject{UserID: payload.UserID, Role: payload.Role}, true
}
