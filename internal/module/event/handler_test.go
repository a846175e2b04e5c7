package event

import (
	"fmt"
	"net/http"
	"testing"

	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store/storetest"
	"hackathon-platform/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	test.Setup(t)
	svc = NewService(storetest.New())
	return test.Engine((&ModuleEvent{}).InitRouter)
}

func TestEventHandlers(t *testing.T) {
	r := setupRouter(t)
	orgToken := test.Token(t, organizer.UserID, model.RoleOrganizer)
	participantToken := test.Token(t, 50, model.RoleParticipant)

	t.Run("未登录", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodGet, "/event", "", nil)
		test.ErrorEqual(t, response.ErrTokenInvalid, status, resp)
	})

	t.Run("参赛者不能创建赛事", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodPost, "/event", participantToken, validReq())
		test.ErrorEqual(t, response.ErrForbidden, status, resp)
	})

	t.Run("缺少必填字段", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodPost, "/event", orgToken, map[string]any{"title": "x"})
		test.ErrorEqual(t, response.ErrInvalidRequest, status, resp)
	})

	var created model.Event
	t.Run("创建并发布", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodPost, "/event", orgToken, validReq())
		test.NoError(t, status, resp)
		require.Equal(t, http.StatusCreated, status)
		created = test.DecodeData[model.Event](t, resp)
		assert.Equal(t, model.EventDraft, created.Status)

		status, resp = test.DoRequest(t, r, http.MethodGet, fmt.Sprintf("/event/%d", created.ID), participantToken, nil)
		test.ErrorEqual(t, response.ErrNotFound, status, resp)

		status, resp = test.DoRequest(t, r, http.MethodPost, fmt.Sprintf("/event/%d/publish", created.ID), participantToken, nil)
		test.ErrorEqual(t, response.ErrForbidden, status, resp)

		status, resp = test.DoRequest(t, r, http.MethodPost, fmt.Sprintf("/event/%d/publish", created.ID), orgToken, nil)
		test.NoError(t, status, resp)

		status, resp = test.DoRequest(t, r, http.MethodGet, fmt.Sprintf("/event/%d", created.ID), participantToken, nil)
		test.NoError(t, status, resp)
		assert.Equal(t, created.Title, test.DecodeData[model.Event](t, resp).Title)
	})

	t.Run("列表分页", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodGet, "/event?page=1&page_size=5", participantToken, nil)
		test.NoError(t, status, resp)
		page := test.DecodeData[struct {
			Events   []model.Event `json:"events"`
			Total    int64         `json:"total"`
			PageSize int           `json:"page_size"`
		}](t, resp)
		assert.Equal(t, int64(1), page.Total)
		assert.Len(t, page.Events, 1)
		assert.Equal(t, 5, page.PageSize)
	})

	t.Run("非法状态", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodPut, fmt.Sprintf("/event/%d/status", created.ID), orgToken,
			map[string]string{"status": "finished"})
		test.ErrorEqual(t, response.ErrValidation, status, resp)
	})

	t.Run("无效ID", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodGet, "/event/abc", orgToken, nil)
		test.ErrorEqual(t, response.ErrInvalidRequest, status, resp)
	})
}
