package models

import (
	"time"
)

type ContentType string

const (
	ContentTextbook     ContentType = "textbook"
	ContentPresentation ContentType = "presentation"
	ContentVideo        ContentType = "video"
	ContentNote         ContentType = "note"
	ContentQuizMarker   ContentType = "quiz_marker"
)

// ContentItem is a single piece of study material attached to a chapter.
// URL points at either an external resource or an object-store path.
type ContentItem struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	Title     string      `json:"title" gorm:"not null;size:200"`
	Type      ContentType `json:"type" gorm:"not null;index;size:20"`
	ChapterID uint        `json:"chapter_id" gorm:"not null;index"`
	URL       string      `json:"url" gorm:"not null;size:1000"`

	// Object-store metadata, empty for external URLs
	StorageKey *string `json:"storage_key" gorm:"size:500"`
	MimeType   *string `json:"mime_type" gorm:"size:100"`
	SizeBytes  int64   `json:"size_bytes"`

	CreatedBy string `json:"created_by" gorm:"not null;size:255;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chapter Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
}

func (ContentItem) TableName() string {
	return "content_items"
}

// ContentView tracks a student's engagement with one content item.
// One row per (student, content item), upserted on every analytics ping.
type ContentView struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	StudentID     string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_student_content"`
	ContentItemID uint   `json:"content_item_id" gorm:"not null;uniqueIndex:idx_student_content"`

	ViewCount      int       `json:"view_count" gorm:"not null;default:0"`
	TimeSpent      int       `json:"time_spent" gorm:"not null;default:0"` // seconds
	CompletionPct  float64   `json:"completion_pct" gorm:"not null;default:0"`
	LastAccessedAt time.Time `json:"last_accessed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student     User        `json:"-" gorm:"foreignKey:StudentID"`
	ContentItem ContentItem `json:"-" gorm:"foreignKey:ContentItemID"`
}

func (ContentView) TableName() string {
	return "content_views"
}
