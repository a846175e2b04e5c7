package leaderboard

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/ranking"
	"hackathon-platform/test"
	"hackathon-platform/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLeaderboardHandlers(t *testing.T) {
	test.Setup(t)
	mem, e, ids := seed(t, true)
	svc = NewService(mem, nil)
	r := test.Engine((&ModuleLeaderboard{}).InitRouter)
	orgToken := test.Token(t, organizer.UserID, model.RoleOrganizer)

	t.Run("匿名查看", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodGet, fmt.Sprintf("/event/%d/leaderboard?limit=2", e.ID), "", nil)
		test.NoError(t, status, resp)
		board := test.DecodeData[ranking.Board](t, resp)
		require.Len(t, board.Entries, 2)
		assert.Equal(t, ids[1], board.Entries[0].SubmissionID)
		assert.Equal(t, int64(3), board.Total)
	})

	t.Run("参数无效", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodGet, fmt.Sprintf("/event/%d/leaderboard?limit=abc", e.ID), "", nil)
		test.ErrorEqual(t, response.ErrInvalidRequest, status, resp)
	})

	t.Run("导出需要登录", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodGet, fmt.Sprintf("/event/%d/leaderboard/export", e.ID), "", nil)
		test.ErrorEqual(t, response.ErrTokenInvalid, status, resp)
	})

	t.Run("导出表格", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/event/%d/leaderboard/export", e.ID), nil)
		req.Header.Set("Authorization", "Bearer "+orgToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tools.ExcelContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

		f, err := excelize.OpenReader(w.Body)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("排行榜")
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "排名", rows[0][0])
		assert.Equal(t, fmt.Sprint(ids[1]), rows[1][1])
	})
}
