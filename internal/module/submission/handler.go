package submission

import (
	"errors"
	"mime/multipart"
	"net/http"

	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store"
	"hackathon-platform/tools"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// formFile 读取 multipart 请求中的附件，没有附件时返回 nil
func formFile(c *gin.Context) (*multipart.FileHeader, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return fh, err
}

// CreateSubmission 队员提交作品，可附带文件
func CreateSubmission(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	var req CreateReq
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("绑定提交作品请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	file, err := formFile(c)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	submission, err := svc.Create(c.Request.Context(), sub, req, file)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, submission)
}

func UpdateSubmission(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	var req UpdateReq
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	file, err := formFile(c)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	submission, err := svc.Update(c.Request.Context(), sub, id, req, file)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, submission)
}

func SubmitDraft(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	submission, err := svc.Submit(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, submission)
}

type statusReq struct {
	Status model.SubmissionStatus `json:"status" binding:"required"`
}

func SetSubmissionStatus(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	submission, err := svc.SetStatus(c.Request.Context(), sub, id, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, submission)
}

func DeleteSubmission(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	if err := svc.Delete(c.Request.Context(), sub, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c)
}

func GetSubmission(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	submission, err := svc.Get(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, submission)
}

type listReq struct {
	tools.PageQuery
	Status model.SubmissionStatus `form:"status"`
}

// ListEventSubmissions 赛事作品列表（支持分页与状态筛选）
func ListEventSubmissions(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	eventID, ok := tools.ParamID(c, "eventId")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	var req listReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	limit, offset := req.LimitOffset()
	subs, total, err := svc.ListByEvent(c.Request.Context(), sub, eventID, req.Status, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"submissions": subs,
		"total":       total,
		"page":        req.Page,
		"page_size":   req.PageSize,
	})
}

func ListTeamSubmissions(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	teamID, ok := tools.ParamID(c, "teamId")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("队伍ID无效"))
		return
	}
	subs, err := svc.ListByTeam(c.Request.Context(), sub, teamID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, subs)
}

// PresignUpload 获取附件直传地址
func PresignUpload(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	var req PresignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	presigned, err := svc.Presign(c.Request.Context(), sub, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, presigned)
}

type commentReq struct {
	Content string `json:"content" binding:"required,max=2000"`
}

func AddComment(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	comment, err := svc.AddComment(c.Request.Context(), sub, id, req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, comment)
}

func ListComments(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("作品ID无效"))
		return
	}
	comments, err := svc.ListComments(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, comments)
}
