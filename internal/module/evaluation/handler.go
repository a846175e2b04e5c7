package evaluation

import (
	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/tools"

	"github.com/gin-gonic/gin"
)

// SubmitEvaluation 新建或更新当前评委的评分，新建返回 201
func SubmitEvaluation(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	var req SubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定评分请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	res, err := svc.Submit(c.Request.Context(), sub, id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if res.Created {
		response.Created(c, res)
		return
	}
	response.Success(c, res)
}

func ListEvaluations(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	evals, err := svc.List(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, evals)
}

func DeleteEvaluation(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("评分ID无效"))
		return
	}
	if err := svc.Delete(c.Request.Context(), sub, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c)
}
