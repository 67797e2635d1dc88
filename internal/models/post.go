package models

// GroupPost 代表群组内的一个帖子。
// 帖子创建只要求调用者已认证，不复核其成员资格（与历史行为保持一致）。
type GroupPost struct {
	BaseModel
	GroupID  uint   `gorm:"not null;index" json:"groupId"`
	AuthorID uint   `gorm:"not null;index" json:"authorId"`
	Title    string `gorm:"type:varchar(200);not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`

	// 关联关系
	Author User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Group  Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定 GroupPost 模型的表名。
func (GroupPost) TableName() string {
	return "group_posts"
}
