package policy

import (
	"testing"

	"hackathon-platform/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestGrant(t *testing.T) {
	tests := []struct {
		name string
		sub  Subject
		rel  Relations
		want []string
	}{
		{"stranger", Subject{UserID: 1, Role: model.RoleParticipant}, Relations{}, []string{}},
		{"member", Subject{UserID: 1, Role: model.RoleParticipant}, Relations{Member: true}, []string{"submit"}},
		{"judge", Subject{UserID: 1, Role: model.RoleJudge}, Relations{Judge: true}, []string{"judge"}},
		{"judge role without invitation", Subject{UserID: 1, Role: model.RoleJudge}, Relations{}, []string{}},
		{"organizer", Subject{UserID: 1, Role: model.RoleOrganizer}, Relations{Organizer: true}, []string{"judge", "organize"}},
		{"admin", Subject{UserID: 1, Role: model.RoleAdmin}, Relations{}, []string{"judge", "organize", "admin"}},
		{"admin member", Subject{UserID: 1, Role: model.RoleAdmin}, Relations{Member: true}, []string{"submit", "judge", "organize", "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grant(tt.sub, tt.rel).Names())
		})
	}
}

func TestCapabilitiesAny(t *testing.T) {
	caps := Grant(Subject{Role: model.RoleParticipant}, Relations{Judge: true})
	assert.True(t, caps.Any(CanOrganize, CanJudge))
	assert.False(t, caps.Any(CanOrganize, CanAdmin))
	assert.True(t, caps.Has(CanJudge))
	assert.False(t, caps.Has(CanJudge|CanAdmin))
}
