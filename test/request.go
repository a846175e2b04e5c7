package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"

	"github.com/stretchr/testify/require"
)

// Token 为测试用户签发令牌
func Token(t *testing.T, userID uint, role model.Role) string {
	t.Helper()
	token, err := jwt.CreateToken(userID, "", role)
	require.NoError(t, err)
	return token
}

// DoRequest 发送 JSON 请求并解析统一响应体，token 为空时不带 Authorization
func DoRequest(t *testing.T, h http.Handler, method, path, token string, request any) (int, response.ResponseBody) {
	t.Helper()
	var body io.Reader
	if request != nil {
		requestBytes, err := json.Marshal(request)
		require.NoError(t, err)
		body = bytes.NewReader(requestBytes)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return Do(t, h, req, token)
}

// Do 发送任意请求（例如 multipart）并解析统一响应体
func Do(t *testing.T, h http.Handler, req *http.Request, token string) (int, response.ResponseBody) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp response.ResponseBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp), "响应体: %s", w.Body.String())
	return w.Code, resp
}

// DecodeData 将响应中的 data 重新解析为具体类型
func DecodeData[T any](t *testing.T, resp response.ResponseBody) T {
	t.Helper()
	var v T
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
