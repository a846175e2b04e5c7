// Package policy 集中定义"谁能对某赛事做什么"，所有权限判断都经过 Grant
package policy

import "hackathon-platform/internal/model"

type Capability uint8

const (
	CanSubmit Capability = 1 << iota
	CanJudge
	CanOrganize
	CanAdmin
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CanSubmit, "submit"},
	{CanJudge, "judge"},
	{CanOrganize, "organize"},
	{CanAdmin, "admin"},
}

// Capabilities 能力集合
type Capabilities Capability

func (s Capabilities) Has(c Capability) bool {
	return Capability(s)&c == c
}

// Any 拥有其中任意一项
func (s Capabilities) Any(cs ...Capability) bool {
	for _, c := range cs {
		if s.Has(c) {
			return true
		}
	}
	return false
}

func (s Capabilities) Names() []string {
	names := make([]string, 0, len(capabilityNames))
	for _, n := range capabilityNames {
		if s.Has(n.c) {
			names = append(names, n.name)
		}
	}
	return names
}

// Subject 调用者身份
type Subject struct {
	UserID uint
	Role   model.Role
}

// Relations 调用者与某赛事（及可选的队伍）的关系，由调用方查询后填入
type Relations struct {
	Organizer bool // 赛事组织者
	Judge     bool // 已接受邀请的评委
	Member    bool // 目标队伍的 accepted 成员
}

// relationTable 赛事内关系 → 能力
var relationTable = []struct {
	has   func(Relations) bool
	grant Capability
}{
	{func(r Relations) bool { return r.Organizer }, CanOrganize | CanJudge},
	{func(r Relations) bool { return r.Judge }, CanJudge},
	{func(r Relations) bool { return r.Member }, CanSubmit},
}

// roleTable 平台角色 → 能力；提交作品只看队伍成员身份，admin 也不例外
var roleTable = map[model.Role]Capability{
	model.RoleAdmin: CanAdmin | CanOrganize | CanJudge,
}

func Grant(sub Subject, rel Relations) Capabilities {
	granted := roleTable[sub.Role]
	for _, row := range relationTable {
		if row.has(rel) {
			granted |= row.grant
		}
	}
	return Capabilities(granted)
}
