package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hackathon-platform/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func failWith(t *testing.T, mode config.Mode, err error) (int, ResponseBody) {
	t.Helper()
	old := config.Get()
	cfg := *old
	cfg.Mode = mode
	config.Set(&cfg)
	t.Cleanup(func() { config.Set(old) })

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Fail(c, err)

	var body ResponseBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestFailMapsKindAndStatus(t *testing.T) {
	status, body := failWith(t, config.ModeRelease, ErrClosedWindow.WithTips("提交已截止"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "closed_window", body.Kind)
	assert.Contains(t, body.Msg, "提交已截止")

	status, body = failWith(t, config.ModeRelease, ErrValidation.Field("score", "超出范围"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body.Kind)
	assert.Contains(t, body.Msg, "score")
}

func TestFailHidesOriginOutsideDebug(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	_, body := failWith(t, config.ModeRelease, cause)
	assert.Equal(t, ErrServerInternal.Code, body.Code)
	assert.Empty(t, body.Origin)

	_, body = failWith(t, config.ModeDebug, cause)
	assert.Contains(t, body.Origin, "connection refused")
}

func TestFromDB(t *testing.T) {
	assert.NoError(t, FromDB(nil, "x"))
	assert.ErrorIs(t, FromDB(gorm.ErrRecordNotFound, "作品不存在"), ErrNotFound)
	assert.ErrorIs(t, FromDB(gorm.ErrDuplicatedKey, ""), ErrConflict)
	assert.ErrorIs(t, FromDB(errors.New("boom"), ""), ErrDatabase)
	assert.ErrorIs(t, FromDB(ErrForbidden, ""), ErrForbidden)
}
