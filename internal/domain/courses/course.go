package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is a course in development. The four snapshot columns hold the
// latest accepted generation outputs.
type Course struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string    `gorm:"column:title;not null" json:"title"`
	Description    string    `gorm:"column:description;type:text;not null" json:"description"`
	TargetAudience string    `gorm:"column:target_audience;not null" json:"targetAudience"`
	Duration       int       `gorm:"column:duration;not null" json:"duration"`

	Framework  datatypes.JSON `gorm:"column:framework" json:"framework"`
	Content    datatypes.JSON `gorm:"column:content" json:"content"`
	Itinerary  datatypes.JSON `gorm:"column:itinerary" json:"itinerary"`
	Assessment datatypes.JSON `gorm:"column:assessment" json:"assessment"`

	CreatedBy *uuid.UUID `gorm:"type:uuid;column:created_by;index" json:"createdBy,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null" json:"updatedAt"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.FillSnapshotDefaults()
	return nil
}

// FillSnapshotDefaults sets empty snapshots to {} (content to []).
func (c *Course) FillSnapshotDefaults() {
	if len(c.Framework) == 0 {
		c.Framework = datatypes.JSON(`{}`)
	}
	if len(c.Content) == 0 {
		c.Content = datatypes.JSON(`[]`)
	}
	if len(c.Itinerary) == 0 {
		c.Itinerary = datatypes.JSON(`{}`)
	}
	if len(c.Assessment) == 0 {
		c.Assessment = datatypes.JSON(`{}`)
	}
}
