package model

// ForumPost 作者信息冗余快照，避免列表页逐条回查用户表
type ForumPost struct {
	UUIDBase
	AuthorID     uint     `gorm:"index;not null" json:"authorId"`
	AuthorName   string   `gorm:"size:100" json:"authorName"`
	AuthorAvatar string   `gorm:"size:255" json:"authorAvatar"`
	Title        string   `gorm:"size:255;not null" json:"title"`
	Content      string   `gorm:"type:text;not null" json:"content"`
	Category     string   `gorm:"size:50" json:"category"`
	Tags         []string `gorm:"serializer:json" json:"tags,omitempty"`
	LikeCount    int      `gorm:"default:0" json:"likeCount"`
	Views        int      `gorm:"default:0" json:"views"`

	Comments []ForumComment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

func (ForumPost) TableName() string {
	return "forum_posts"
}

type ForumComment struct {
	UUIDBase
	PostID       string `gorm:"index;type:varchar(36);not null" json:"postId"`
	AuthorID     uint   `gorm:"index;not null" json:"authorId"`
	AuthorName   string `gorm:"size:100" json:"authorName"`
	AuthorAvatar string `gorm:"size:255" json:"authorAvatar"`
	Content      string `gorm:"type:text;not null" json:"content"`
}

func (ForumComment) TableName() string {
	return "forum_comments"
}

// ForumLike 点赞集合，(user, post) 唯一，二次点赞即取消
type ForumLike struct {
	BaseModel
	UserID uint   `gorm:"uniqueIndex:idx_user_post;not null" json:"userId"`
	PostID string `gorm:"uniqueIndex:idx_user_post;type:varchar(36);not null" json:"postId"`
}

func (ForumLike) TableName() string {
	return "forum_likes"
}
