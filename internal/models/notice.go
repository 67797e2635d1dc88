package models

// NoticePriority 是公告的优先级，数值越大越靠前。
type NoticePriority int

const (
	NoticePriorityLow    NoticePriority = 0
	NoticePriorityNormal NoticePriority = 1
	NoticePriorityHigh   NoticePriority = 2
	NoticePriorityUrgent NoticePriority = 3
)

// Notice 代表队长发布的群组公告。只有队长可以创建、修改、删除或切换置顶。
// 公告按 置顶 > 优先级 > 创建时间 排序；没有自动取消置顶的策略。
type Notice struct {
	BaseModel
	GroupID  uint           `gorm:"not null;index" json:"groupId"`
	AuthorID uint           `gorm:"not null" json:"authorId"` // 创建时必须是群组队长
	Title    string         `gorm:"type:varchar(200);not null" json:"title"`
	Content  string         `gorm:"type:text" json:"content,omitempty"`
	Priority NoticePriority `gorm:"not null;default:1" json:"priority"`
	IsPinned bool           `gorm:"not null;default:true" json:"isPinned"`

	// 关联关系
	Author User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Group  Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定 Notice 模型的表名。
func (Notice) TableName() string {
	return "notices"
}
