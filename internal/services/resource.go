package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/yanxue-backend/internal/data/repos"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/apierr"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

type ResourceInput struct {
	Title *string   `json:"title"`
	Type  *string   `json:"type"`
	URL   *string   `json:"url"`
	Tags  *[]string `json:"tags"`
}

type ResourceService interface {
	List(ctx context.Context, resourceType string) ([]*types.Resource, error)
	Create(ctx context.Context, in ResourceInput) (*types.Resource, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Resource, error)
	Update(ctx context.Context, id uuid.UUID, in ResourceInput) (*types.Resource, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type resourceService struct {
	log          *logger.Logger
	resourceRepo repos.ResourceRepo
}

func NewResourceService(log *logger.Logger, resourceRepo repos.ResourceRepo) ResourceService {
	return &resourceService{log: log.With("service", "ResourceService"), resourceRepo: resourceRepo}
}

func (rs *resourceService) List(ctx context.Context, resourceType string) ([]*types.Resource, error) {
	resourceType = strings.TrimSpace(resourceType)
	if resourceType != "" && !types.ValidResourceType(resourceType) {
		return nil, invalidResourceType(resourceType)
	}
	list, err := rs.resourceRepo.List(ctx, nil, resourceType)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return list, nil
}

func (rs *resourceService) Create(ctx context.Context, in ResourceInput) (*types.Resource, error) {
	switch {
	case in.Title == nil || strings.TrimSpace(*in.Title) == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a resource title")
	case in.Type == nil || *in.Type == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a resource type")
	case in.URL == nil || strings.TrimSpace(*in.URL) == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a resource URL")
	}
	updates, err := resourceUpdates(in)
	if err != nil {
		return nil, err
	}
	r := &types.Resource{
		Title: updates["title"].(string),
		Type:  updates["type"].(string),
		URL:   updates["url"].(string),
	}
	if tags, ok := updates["tags"]; ok {
		r.Tags = tags.(datatypes.JSONSlice[string])
	}
	created, err := rs.resourceRepo.Create(ctx, nil, []*types.Resource{r})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return created[0], nil
}

func (rs *resourceService) Get(ctx context.Context, id uuid.UUID) (*types.Resource, error) {
	found, err := rs.resourceRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if len(found) == 0 {
		return nil, apierr.NotFound("Resource not found")
	}
	return found[0], nil
}

func (rs *resourceService) Update(ctx context.Context, id uuid.UUID, in ResourceInput) (*types.Resource, error) {
	updates, err := resourceUpdates(in)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := rs.resourceRepo.Update(ctx, nil, id, updates); err != nil {
		return nil, apierr.Internal(err)
	}
	return rs.Get(ctx, id)
}

func (rs *resourceService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := rs.resourceRepo.Delete(ctx, nil, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("Resource not found")
	}
	return nil
}

func resourceUpdates(in ResourceInput) (map[string]any, error) {
	updates := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, apierr.BadRequest("missing_fields", "Please add a resource title")
		}
		updates["title"] = t
	}
	if in.Type != nil {
		if !types.ValidResourceType(*in.Type) {
			return nil, invalidResourceType(*in.Type)
		}
		updates["type"] = *in.Type
	}
	if in.URL != nil {
		u := strings.TrimSpace(*in.URL)
		if u == "" {
			return nil, apierr.BadRequest("missing_fields", "Please add a resource URL")
		}
		updates["url"] = u
	}
	if in.Tags != nil {
		tags := datatypes.JSONSlice[string]{}
		for _, t := range *in.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		updates["tags"] = tags
	}
	return updates, nil
}

func invalidResourceType(t string) error {
	return apierr.BadRequest("invalid_input", fmt.Sprintf("Invalid resource type %q", t))
}
