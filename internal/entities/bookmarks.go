package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookmark is the stored form of a bookmark: related entities are referenced
// by identifier only. TagIDs and CollectionIDs are loaded from the
// association tables by the repository and are not columns on this table.
type Bookmark struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"index;size:36" json:"user_id"`
	URL        string    `gorm:"size:2048" json:"url"`
	Title      string    `gorm:"size:512" json:"title"`
	Summary    string    `gorm:"type:text" json:"summary"`
	IsFav      bool      `gorm:"default:false" json:"is_fav"`
	CategoryID *string   `gorm:"index;size:36" json:"category_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	TagIDs        []string `gorm:"-" json:"tag_ids"`
	CollectionIDs []string `gorm:"-" json:"collection_ids"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BookmarkTag associates a bookmark with a tag. The association lives in its
// own table so a tag deletion can be resolved in one place instead of
// scanning embedded lists.
type BookmarkTag struct {
	BookmarkID string    `gorm:"primaryKey;size:36" json:"bookmark_id"`
	TagID      string    `gorm:"primaryKey;size:36;index" json:"tag_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookmarkCollection associates a bookmark with a collection.
type BookmarkCollection struct {
	BookmarkID   string    `gorm:"primaryKey;size:36" json:"bookmark_id"`
	CollectionID string    `gorm:"primaryKey;size:36;index" json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Tag struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36" json:"user_id"`
	Name      string    `gorm:"index;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type Collection struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36" json:"user_id"`
	Name      string    `gorm:"index;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36" json:"user_id"`
	Name      string    `gorm:"index;size:100" json:"name"`
	Emoji     string    `gorm:"size:16" json:"emoji,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:255" json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
