package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(minRole model.Role) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Cors())
	r.GET("/me", Auth(minRole), func(c *gin.Context) {
		payload, _ := jwt.GetUserPayload(c)
		response.Success(c, payload.UserID)
	})
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path, token string) (*httptest.ResponseRecorder, response.ResponseBody) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body response.ResponseBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuth(t *testing.T) {
	cfg := *config.Get()
	cfg.JWT.AccessSecret = "middleware-test"
	cfg.JWT.AccessExpire = 60
	old := config.Get()
	config.Set(&cfg)
	t.Cleanup(func() { config.Set(old) })

	participant, err := jwt.CreateToken(3, "p", model.RoleParticipant)
	require.NoError(t, err)
	organizer, err := jwt.CreateToken(4, "o", model.RoleOrganizer)
	require.NoError(t, err)

	r := newEngine(model.RoleOrganizer)

	w, body := do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenInvalid.Code, body.Code)

	w, body = do(r, http.MethodGet, "/me", participant)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", body.Kind)

	w, body = do(r, http.MethodGet, "/me", organizer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, body.Data)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryAndPreflight(t *testing.T) {
	r := newEngine(model.RoleParticipant)

	w, body := do(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.ErrServerInternal.Code, body.Code)

	w, _ = do(r, http.MethodOptions, "/me", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLogger(t *testing.T) {
	cfg := *config.Get()
	cfg.JWT.AccessSecret = "middleware-test"
	cfg.JWT.AccessExpire = 60
	old := config.Get()
	config.Set(&cfg)
	t.Cleanup(func() { config.Set(old) })

	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(slog.New(slog.NewJSONHandler(&buf, nil))))
	r.GET("/ping", func(c *gin.Context) { response.Success(c, "pong") })
	r.GET("/event/:id/leaderboard", OptionalAuth(), func(c *gin.Context) { response.Success(c, nil) })
	r.GET("/event/:id/leaderboard/export", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", []byte("xlsx"))
	})
	r.GET("/submission/:id", func(c *gin.Context) { response.Fail(c, response.ErrNotFound.WithTips("作品不存在")) })

	lines := func() []map[string]any {
		var out []map[string]any
		for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			var entry map[string]any
			require.NoError(t, json.Unmarshal(line, &entry))
			out = append(out, entry)
		}
		buf.Reset()
		return out
	}

	do(r, http.MethodGet, "/ping", "")
	assert.Empty(t, lines(), "探活不记录")

	token, err := jwt.CreateToken(7, "judge", model.RoleJudge)
	require.NoError(t, err)
	do(r, http.MethodGet, "/event/3/leaderboard", token)
	entries := lines()
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "/event/:id/leaderboard", entries[0]["route"])
	assert.Equal(t, "/event/3/leaderboard", entries[0]["path"])
	assert.EqualValues(t, 7, entries[0]["user_id"])
	assert.NotContains(t, entries[0], "response_body")

	do(r, http.MethodGet, "/event/3/leaderboard/export", "")
	entries = lines()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "user_id")

	do(r, http.MethodGet, "/submission/9", "")
	entries = lines()
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Contains(t, entries[0]["response_body"], "作品不存在")
}
