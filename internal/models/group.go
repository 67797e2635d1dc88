package models

import "time"

// Group 代表一个社区群组。LeaderID 指向群组的队长，队长同时也持有一条
// GroupMember 记录。
type Group struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	LeaderID    uint   `gorm:"not null;index" json:"leaderId"` // 指向 User 模型的外键

	// 关联关系
	Leader  User          `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"` // 群组成员列表
}

// TableName 指定 Group 模型的表名。
func (Group) TableName() string {
	return "groups"
}

// GroupSummary 是群组列表的投影，带有实时统计的成员数。
type GroupSummary struct {
	Group
	MemberCount int64 `json:"memberCount"`
}

// GroupMember 将用户链接到群组。(group_id, user_id) 对是唯一的，
// 一个用户在同一群组中最多出现一次。成员记录是硬删除的，退出后可以重新加入。
type GroupMember struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_member_pair" json:"groupId"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_member_pair" json:"userId"`
	JoinedAt time.Time `gorm:"not null" json:"joinedAt"`

	// 关联关系
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定 GroupMember 模型的表名。
func (GroupMember) TableName() string {
	return "group_members"
}

// MembershipState 是 (user, group) 关系的显式标签。底层存储仍是
// Group/GroupMember/JoinRequest 三张表，标签在读取时推导。
type MembershipState string

const (
	MembershipNone    MembershipState = "none"
	MembershipPending MembershipState = "pending"
	MembershipMember  MembershipState = "member"
	MembershipLeader  MembershipState = "leader" // leader 隐含 member
)
