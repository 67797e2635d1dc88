package models

import "time"

// JoinRequestStatus 定义加入申请的状态。申请记录是瞬态的：
// 被接受或拒绝后直接删除，不做归档，所以持久化的记录永远是 pending。
type JoinRequestStatus string

const (
	JoinRequestStatusPending JoinRequestStatus = "pending"
)

// JoinRequest 代表一个非成员向群组发起的加入申请。
// (group_id, user_id) 对唯一；同一对用户与群组最多存在一条待处理申请，
// 且在对应的 GroupMember 记录存在时不允许创建。
type JoinRequest struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	GroupID   uint              `gorm:"not null;uniqueIndex:idx_join_request_pair" json:"groupId"`
	UserID    uint              `gorm:"not null;uniqueIndex:idx_join_request_pair" json:"userId"`
	Message   string            `gorm:"type:text" json:"message,omitempty"`
	Status    JoinRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time         `json:"createdAt"`

	// 关联关系
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定 JoinRequest 模型的表名。
func (JoinRequest) TableName() string {
	return "join_requests"
}

// JoinRequestWithUser is a DTO that includes join request details
// along with basic information about the requesting user.
// Useful for the leader-facing pending request listing.
type JoinRequestWithUser struct {
	JoinRequest
	Requester *UserBasicInfo `json:"requester"`
}
