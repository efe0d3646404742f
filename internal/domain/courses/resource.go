package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ResourceTypes = []string{"document", "image", "video", "audio", "link"}

func ValidResourceType(t string) bool {
	for _, known := range ResourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Resource struct {
	ID    uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title string                      `gorm:"column:title;not null" json:"title"`
	Type  string                      `gorm:"column:type;not null;index" json:"type"`
	URL   string                      `gorm:"column:url;not null" json:"url"`
	Tags  datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Resource) TableName() string { return "resource" }

func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Tags == nil {
		r.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}
