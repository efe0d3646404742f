package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/yanxue-backend/internal/data/repos"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	Course     repos.CourseRepo
	Resource   repos.ResourceRepo
	Generation repos.GenerationRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Course:     repos.NewCourseRepo(db, log),
		Resource:   repos.NewResourceRepo(db, log),
		Generation: repos.NewGenerationRecordRepo(db, log),
	}
}
