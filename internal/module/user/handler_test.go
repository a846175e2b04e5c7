package user

import (
	"context"
	"net/http"
	"testing"

	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store/storetest"
	"hackathon-platform/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandlers(t *testing.T) {
	test.Setup(t)
	mem := storetest.New()
	svc = NewService(mem)
	r := test.Engine((&ModuleUser{}).InitRouter)

	token, err := jwt.CreateToken(42, "Ada", model.RoleJudge)
	require.NoError(t, err)

	t.Run("首次访问建档", func(t *testing.T) {
		status, resp := test.DoRequest(t, r, http.MethodGet, "/user/me", token, nil)
		test.NoError(t, status, resp)
		u := test.DecodeData[model.User](t, resp)
		assert.Equal(t, uint(42), u.ID)
		assert.Equal(t, "Ada", u.Name)
		assert.Equal(t, model.RoleJudge, u.Role)
	})

	t.Run("再次访问返回已有资料", func(t *testing.T) {
		other, err := jwt.CreateToken(42, "", model.RoleJudge)
		require.NoError(t, err)
		status, resp := test.DoRequest(t, r, http.MethodGet, "/user/me", other, nil)
		test.NoError(t, status, resp)
		assert.Equal(t, "Ada", test.DecodeData[model.User](t, resp).Name)
	})

	t.Run("查看他人", func(t *testing.T) {
		viewer := test.Token(t, 7, model.RoleParticipant)
		status, resp := test.DoRequest(t, r, http.MethodGet, "/user/42", viewer, nil)
		test.NoError(t, status, resp)
		assert.Equal(t, "Ada", test.DecodeData[model.User](t, resp).Name)

		status, resp = test.DoRequest(t, r, http.MethodGet, "/user/404", viewer, nil)
		test.ErrorEqual(t, response.ErrNotFound, status, resp)

		status, resp = test.DoRequest(t, r, http.MethodGet, "/user/abc", viewer, nil)
		test.ErrorEqual(t, response.ErrInvalidRequest, status, resp)
	})
}

func TestMeDefaultsName(t *testing.T) {
	svc := NewService(storetest.New())
	u, err := svc.Me(context.Background(), 9, "", "root")
	require.NoError(t, err)
	assert.Equal(t, "user-9", u.Name)
	assert.Equal(t, model.RoleParticipant, u.Role)
}
