package user

import (
	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/tools"

	"github.com/gin-gonic/gin"
)

func GetMe(c *gin.Context) {
	payload, _ := jwt.GetUserPayload(c)
	u, err := svc.Me(c.Request.Context(), payload.UserID, payload.Name, payload.Role)
	if err != nil {
		log.Error("读取当前用户失败", "user_id", payload.UserID, "error", err)
		response.Fail(c, err)
		return
	}
	response.Success(c, u)
}

func GetUser(c *gin.Context) {
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("用户ID无效"))
		return
	}
	u, err := svc.Profile(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, u)
}
