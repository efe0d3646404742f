package domain

import (
	"github.com/yungbote/yanxue-backend/internal/domain/courses"
	"github.com/yungbote/yanxue-backend/internal/domain/generation"
	"github.com/yungbote/yanxue-backend/internal/domain/user"
)

type User = user.User
type Course = courses.Course
type Resource = courses.Resource
type GenerationRecord = generation.Record

const (
	RoleAdmin   = user.RoleAdmin
	RoleTeacher = user.RoleTeacher
	RoleStudent = user.RoleStudent
)

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&Course{},
		&Resource{},
		&GenerationRecord{},
	}
}

func ValidRole(role string) bool { return user.ValidRole(role) }

func ValidResourceType(t string) bool { return courses.ValidResourceType(t) }
