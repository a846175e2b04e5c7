package test

import (
	"net/http"
	"testing"

	"hackathon-platform/internal/global/response"

	"github.com/stretchr/testify/require"
)

// ErrorEqual 比较错误码与类别，消息可能带有 tips 故不做全等比较
func ErrorEqual(t *testing.T, expected *response.Error, status int, resp response.ResponseBody) {
	t.Helper()
	require.Equal(t, expected.HTTPStatus(), status)
	require.Equal(t, expected.Code, resp.Code, resp.Msg)
	require.Equal(t, expected.Kind, resp.Kind)
}

func NoError(t *testing.T, status int, resp response.ResponseBody) {
	t.Helper()
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, status, resp.Msg)
	require.Equal(t, int32(status), resp.Code)
}
