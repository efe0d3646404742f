package repos

import (
	"github.com/yungbote/yanxue-backend/internal/data/repos/courses"
	"github.com/yungbote/yanxue-backend/internal/data/repos/generation"
	"github.com/yungbote/yanxue-backend/internal/data/repos/user"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type CourseRepo = courses.CourseRepo
type ResourceRepo = courses.ResourceRepo
type GenerationRecordRepo = generation.RecordRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return courses.NewCourseRepo(db, baseLog)
}
func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return courses.NewResourceRepo(db, baseLog)
}

func NewGenerationRecordRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRecordRepo {
	return generation.NewRecordRepo(db, baseLog)
}
