package models

import "time"

// Comment belongs to exactly one article and carries exactly one identity:
// either UserID (registered author) or the Author/Email pair (anonymous).
// ParentCommentID is nil for top-level comments and references another
// approved comment of the same article for replies.
type Comment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ArticleID       uint       `gorm:"index;not null" json:"article_id"`
	UserID          *uint      `gorm:"index" json:"user_id,omitempty"`
	Author          string     `gorm:"size:128" json:"author"`
	Email           string     `gorm:"size:255" json:"-"`
	ParentCommentID *uint      `gorm:"index" json:"parent_comment_id,omitempty"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	LikesCount      int64      `gorm:"not null;default:0" json:"likes_count"`
	IsApproved      bool       `gorm:"not null;default:true" json:"is_approved"`
	IsEdited        bool       `gorm:"not null;default:false" json:"is_edited"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User    *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`
	Article *Article  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentCommentID" json:"replies,omitempty"`
}

// IsAnonymous reports whether the comment was written without an account.
func (c *Comment) IsAnonymous() bool {
	return c.UserID == nil
}
