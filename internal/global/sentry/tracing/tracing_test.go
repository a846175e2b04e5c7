package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFamily(t *testing.T) {
	cases := []struct {
		args []any
		want string
	}{
		{[]any{"get", "leaderboard:12:version"}, "leaderboard:*:version"},
		{[]any{"set", "leaderboard:12:v3:20:0", "{}", "ex", 60}, "leaderboard:*:*:*:*"},
		{[]any{"ping"}, ""},
		{[]any{"get", 42}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, keyFamily(tc.args), "%v", tc.args)
	}
}

func TestSanitizeURL(t *testing.T) {
	assert.Equal(t, "https://hooks.example.com/notify", sanitizeURL("https://hooks.example.com/notify?sig=secret"))
	assert.Equal(t, "unknown", sanitizeURL(""))
	assert.Equal(t, "unknown", sanitizeURL("://bad"))
}
