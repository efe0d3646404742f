package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/yanxue-backend/internal/data/repos"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/apierr"
	"github.com/yungbote/yanxue-backend/internal/platform/ctxutil"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

// FlexInt accepts 5 or "5".
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("duration must be a number")
	}
	if n != float64(int(n)) {
		return fmt.Errorf("duration must be a whole number of days")
	}
	*f = FlexInt(int(n))
	return nil
}

type CourseInput struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	TargetAudience *string          `json:"targetAudience"`
	Duration       *FlexInt         `json:"duration"`
	Framework      *json.RawMessage `json:"framework"`
	Content        *json.RawMessage `json:"content"`
	Itinerary      *json.RawMessage `json:"itinerary"`
	Assessment     *json.RawMessage `json:"assessment"`
	CreatedBy      *string          `json:"createdBy"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// CourseView is a course with its creator expanded when known.
type CourseView struct {
	*types.Course
	Creator *UserSummary `json:"creator,omitempty"`
}

type CourseService interface {
	List(ctx context.Context) ([]*CourseView, error)
	Create(ctx context.Context, in CourseInput) (*types.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*CourseView, error)
	Update(ctx context.Context, id uuid.UUID, in CourseInput) (*types.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseService struct {
	log        *logger.Logger
	courseRepo repos.CourseRepo
	userRepo   repos.UserRepo
}

func NewCourseService(log *logger.Logger, courseRepo repos.CourseRepo, userRepo repos.UserRepo) CourseService {
	return &courseService{
		log:        log.With("service", "CourseService"),
		courseRepo: courseRepo,
		userRepo:   userRepo,
	}
}

func (cs *courseService) List(ctx context.Context) ([]*CourseView, error) {
	list, err := cs.courseRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return cs.withCreators(ctx, list), nil
}

func (cs *courseService) Create(ctx context.Context, in CourseInput) (*types.Course, error) {
	c := &types.Course{}
	switch {
	case in.Title == nil || strings.TrimSpace(*in.Title) == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a course title")
	case in.Description == nil || strings.TrimSpace(*in.Description) == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a course description")
	case in.TargetAudience == nil || strings.TrimSpace(*in.TargetAudience) == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a target audience")
	case in.Duration == nil:
		return nil, apierr.BadRequest("missing_fields", "Please add a course duration in days")
	}
	updates, err := courseUpdates(in)
	if err != nil {
		return nil, err
	}
	c.Title = updates["title"].(string)
	c.Description = updates["description"].(string)
	c.TargetAudience = updates["target_audience"].(string)
	c.Duration = updates["duration"].(int)
	if v, ok := updates["framework"]; ok {
		c.Framework = v.(datatypes.JSON)
	}
	if v, ok := updates["content"]; ok {
		c.Content = v.(datatypes.JSON)
	}
	if v, ok := updates["itinerary"]; ok {
		c.Itinerary = v.(datatypes.JSON)
	}
	if v, ok := updates["assessment"]; ok {
		c.Assessment = v.(datatypes.JSON)
	}

	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		id := rd.UserID
		c.CreatedBy = &id
	} else if in.CreatedBy != nil && strings.TrimSpace(*in.CreatedBy) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*in.CreatedBy))
		if err != nil {
			return nil, apierr.BadRequest("invalid_input", "createdBy must be a user id")
		}
		c.CreatedBy = &id
	}

	created, err := cs.courseRepo.Create(ctx, nil, []*types.Course{c})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	cs.log.Info("course created", "course_id", created[0].ID.String())
	return created[0], nil
}

func (cs *courseService) Get(ctx context.Context, id uuid.UUID) (*CourseView, error) {
	c, err := cs.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return cs.withCreators(ctx, []*types.Course{c})[0], nil
}

func (cs *courseService) Update(ctx context.Context, id uuid.UUID, in CourseInput) (*types.Course, error) {
	updates, err := courseUpdates(in)
	if err != nil {
		return nil, err
	}
	if _, err := cs.load(ctx, id); err != nil {
		return nil, err
	}
	if err := cs.courseRepo.Update(ctx, nil, id, updates); err != nil {
		return nil, apierr.Internal(err)
	}
	return cs.load(ctx, id)
}

func (cs *courseService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := cs.courseRepo.Delete(ctx, nil, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("Course not found")
	}
	return nil
}

func (cs *courseService) load(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	found, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if len(found) == 0 {
		return nil, apierr.NotFound("Course not found")
	}
	return found[0], nil
}

func (cs *courseService) withCreators(ctx context.Context, list []*types.Course) []*CourseView {
	var ids []uuid.UUID
	for _, c := range list {
		if c.CreatedBy != nil {
			ids = append(ids, *c.CreatedBy)
		}
	}
	byID := map[uuid.UUID]*types.User{}
	if len(ids) > 0 && cs.userRepo != nil {
		users, err := cs.userRepo.GetByIDs(ctx, nil, ids)
		if err != nil {
			cs.log.Warn("creator lookup failed", "error", err)
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}
	out := make([]*CourseView, 0, len(list))
	for _, c := range list {
		v := &CourseView{Course: c}
		if c.CreatedBy != nil {
			if u, ok := byID[*c.CreatedBy]; ok {
				v.Creator = &UserSummary{ID: u.ID.String(), Username: u.Username, Email: u.Email, Role: u.Role}
			}
		}
		out = append(out, v)
	}
	return out
}

// courseUpdates turns the present fields of in into column updates,
// validating each one.
func courseUpdates(in CourseInput) (map[string]any, error) {
	updates := map[string]any{}
	text := func(col string, v *string, msg string) error {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		if s == "" {
			return apierr.BadRequest("missing_fields", msg)
		}
		updates[col] = s
		return nil
	}
	if err := text("title", in.Title, "Please add a course title"); err != nil {
		return nil, err
	}
	if err := text("description", in.Description, "Please add a course description"); err != nil {
		return nil, err
	}
	if err := text("target_audience", in.TargetAudience, "Please add a target audience"); err != nil {
		return nil, err
	}
	if in.Duration != nil {
		if *in.Duration < 1 {
			return nil, apierr.BadRequest("invalid_input", "Course duration must be at least 1 day")
		}
		updates["duration"] = int(*in.Duration)
	}
	snapshots := []struct {
		col   string
		raw   *json.RawMessage
		array bool
	}{
		{"framework", in.Framework, false},
		{"content", in.Content, true},
		{"itinerary", in.Itinerary, false},
		{"assessment", in.Assessment, false},
	}
	for _, s := range snapshots {
		if s.raw == nil {
			continue
		}
		v, err := snapshotJSON(s.col, *s.raw, s.array)
		if err != nil {
			return nil, err
		}
		updates[s.col] = v
	}
	return updates, nil
}

func snapshotJSON(col string, raw json.RawMessage, array bool) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if array {
			return datatypes.JSON(`[]`), nil
		}
		return datatypes.JSON(`{}`), nil
	}
	want := byte('{')
	if array {
		want = '['
	}
	if trimmed[0] != want || !json.Valid(trimmed) {
		kind := "an object"
		if array {
			kind = "an array"
		}
		return nil, apierr.BadRequest("invalid_input", fmt.Sprintf("%s must be %s", col, kind))
	}
	return datatypes.JSON(trimmed), nil
}
