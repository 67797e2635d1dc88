package models

// User 代表系统中的一个住户账号。
// 注册时邮箱必须出现在允许名单中（见 internal/allowlist）。
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // 不暴露密码哈希
	Name         string `gorm:"type:varchar(100)" json:"name,omitempty"`

	// 关联关系
	LedGroups []*Group    `gorm:"foreignKey:LeaderID" json:"ledGroups,omitempty"`   // 用户担任队长的群组
	Groups    []*Group    `gorm:"many2many:group_members;" json:"groups,omitempty"` // 用户所属的群组
	Posts     []GroupPost `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`       // 用户发布的帖子
}

// UserBasicInfo holds minimal public information about a user.
// Used for member lists and join request listings.
type UserBasicInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// BasicInfo 返回用户的公开信息摘要。
func (u *User) BasicInfo() *UserBasicInfo {
	return &UserBasicInfo{ID: u.ID, Name: u.Name, Email: u.Email}
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}
