package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record is one completed generation run. Rows are only ever inserted.
// CourseID is a loose back-reference and is never checked against course.
type Record struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OperationKind string         `gorm:"column:operation_kind;not null;index" json:"operationKind"`
	Input         datatypes.JSON `gorm:"column:input;not null" json:"input"`
	Output        datatypes.JSON `gorm:"column:output;not null" json:"output"`
	CourseID      *string        `gorm:"column:course_id;index:idx_generation_record_course,priority:1" json:"courseId,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null;index:idx_generation_record_course,priority:2" json:"createdAt"`
}

func (Record) TableName() string { return "generation_record" }

// BeforeCreate assigns a time-ordered v7 id so ties on created_at still
// sort in insertion order.
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}
