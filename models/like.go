package models

import "time"

// Like is the identity-bound like ledger: one row per (user, article) pair,
// enforced by the compound unique index. It is deliberately independent from
// Article.LikesCount, which the anonymous counter path moves without any
// identity attached.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_article" json:"user_id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_likes_user_article" json:"article_id"`
	CreatedAt time.Time `json:"created_at"`

	User    *User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Article *Article `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article,omitempty"`
}
