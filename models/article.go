package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TagList stores article tags as a comma separated column while serializing
// to a JSON array.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "", nil
	}
	return strings.Join(t, ","), nil
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported tag column type %T", value)
	}
	if raw == "" {
		*t = nil
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make(TagList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	*t = tags
	return nil
}

// Article is a blog post. LikesCount, ViewsCount and CommentsCount are
// denormalized counters: likes/views move by atomic increments, the comment
// counter is recomputed from approved comment rows after every
// comment-affecting write.
type Article struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Slug          string     `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Excerpt       string     `gorm:"size:512" json:"excerpt"`
	Author        string     `gorm:"size:128;not null" json:"author"`
	ImageURL      string     `gorm:"size:512" json:"image_url"`
	Tags          TagList    `gorm:"type:varchar(512)" json:"tags"`
	LikesCount    int64      `gorm:"not null;default:0" json:"likes_count"`
	ViewsCount    int64      `gorm:"not null;default:0" json:"views_count"`
	CommentsCount int64      `gorm:"not null;default:0" json:"comments_count"`
	IsPublished   bool       `gorm:"not null;default:false" json:"is_published"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// UserLiked is computed per request from the like ledger and only
	// serialized for authenticated callers.
	UserLiked *bool `gorm:"-" json:"user_liked,omitempty"`
}
