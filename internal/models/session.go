package models

import (
	"strings"
	"time"
)

// Session is one visitor's capture session. Documents are created by the
// capture/render pipeline; this service only reads them and merges flags.
type Session struct {
	ID             string    `gorm:"primaryKey;type:text" json:"id" yaml:"id"`
	GifID          string    `gorm:"column:gif_id" json:"gifID" yaml:"gifID"`
	Solved         bool      `gorm:"default:false" json:"solved" yaml:"solved"`
	Processed      bool      `gorm:"index;default:false" json:"processed" yaml:"processed"`
	ShareAnswer    bool      `gorm:"default:false" json:"shareAnswer" yaml:"shareAnswer"`
	GalleryVisible bool      `gorm:"index;default:false" json:"galleryVisible" yaml:"galleryVisible"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// TableName keeps the postgres table name stable regardless of gorm's naming strategy
func (Session) TableName() string {
	return "sessions"
}

// Document field names, shared by the document backends
const (
	FieldGifID          = "gifID"
	FieldProcessed      = "processed"
	FieldSolved         = "solved"
	FieldShareAnswer    = "shareAnswer"
	FieldGalleryVisible = "galleryVisible"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
)

// SessionPatch is a merge-write: nil fields are left untouched.
type SessionPatch struct {
	ShareAnswer    *bool
	GalleryVisible *bool
}

// KeepPatch records that the visitor chose to keep their capture
func KeepPatch() SessionPatch {
	return SessionPatch{ShareAnswer: boolPtr(true)}
}

// AddToGalleryPatch records that the visitor kept their capture and opted into the public gallery
func AddToGalleryPatch() SessionPatch {
	return SessionPatch{ShareAnswer: boolPtr(true), GalleryVisible: boolPtr(true)}
}

// IsEmpty reports whether the patch would write nothing
func (p SessionPatch) IsEmpty() bool {
	return p.ShareAnswer == nil && p.GalleryVisible == nil
}

// Fields returns the patch keyed by document field name
func (p SessionPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, 2)
	if p.ShareAnswer != nil {
		fields[FieldShareAnswer] = *p.ShareAnswer
	}
	if p.GalleryVisible != nil {
		fields[FieldGalleryVisible] = *p.GalleryVisible
	}
	return fields
}

// Columns returns the patch keyed by SQL column name
func (p SessionPatch) Columns() map[string]interface{} {
	columns := make(map[string]interface{}, 2)
	if p.ShareAnswer != nil {
		columns["share_answer"] = *p.ShareAnswer
	}
	if p.GalleryVisible != nil {
		columns["gallery_visible"] = *p.GalleryVisible
	}
	return columns
}

// Apply merges the patch onto s in place
func (p SessionPatch) Apply(s *Session) {
	if p.ShareAnswer != nil {
		s.ShareAnswer = *p.ShareAnswer
	}
	if p.GalleryVisible != nil {
		s.GalleryVisible = *p.GalleryVisible
	}
}

// NormalizeSessionID folds a session id to its store key. Ids are handed out
// in upper case on the capture rig but stored lower case.
func NormalizeSessionID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// InGallery reports whether the session should be listed publicly
func (s *Session) InGallery() bool {
	return s.GalleryVisible && s.Processed
}

func boolPtr(b bool) *bool {
	return &b
}
