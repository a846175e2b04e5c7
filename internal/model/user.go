package model

// Role 平台级角色，赛事内的组织者/评委/队员身份见 policy
type Role string

const (
	RoleParticipant Role = "participant"
	RoleJudge       Role = "judge"
	RoleOrganizer   Role = "organizer"
	RoleAdmin       Role = "admin"
)

var roleLevel = map[Role]int{
	RoleParticipant: 0,
	RoleJudge:       1,
	RoleOrganizer:   2,
	RoleAdmin:       3,
}

// Level 角色等级，未知角色按 participant 处理
func (r Role) Level() int {
	return roleLevel[r]
}

func (r Role) Valid() bool {
	_, ok := roleLevel[r]
	return ok
}

type User struct {
	Model
	Name   string `gorm:"type:varchar(50);not null" json:"name"`
	Email  string `gorm:"type:varchar(255);" json:"email"`
	Role   Role   `gorm:"type:varchar(20);default:participant;not null" json:"role"`
	Avatar string `gorm:"type:varchar(255);" json:"avatar"`
}
