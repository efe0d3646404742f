package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	redisbus "github.com/yungbote/yanxue-backend/internal/clients/redis"
	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/fallback"
	"github.com/yungbote/yanxue-backend/internal/coursegen/prompts"
	"github.com/yungbote/yanxue-backend/internal/coursegen/schema"
	"github.com/yungbote/yanxue-backend/internal/coursegen/validation"
	"github.com/yungbote/yanxue-backend/internal/data/repos"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/observability"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

const (
	ModeLive     = "live"
	ModeFallback = "fallback"
)

// EventPublisher receives a notification for every stored record.
type EventPublisher interface {
	Publish(ctx context.Context, ev redisbus.Event) error
}

type GenerationService interface {
	Run(ctx context.Context, kind coursegen.Kind, in coursegen.Input) (*types.GenerationRecord, coursegen.Output, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*types.GenerationRecord, error)
	ListByCourse(ctx context.Context, courseID string) ([]*types.GenerationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*types.GenerationRecord, error)
	Schema(kind coursegen.Kind) (map[string]any, error)
	Mode() string
}

type generationService struct {
	log       *logger.Logger
	store     repos.GenerationRecordRepo
	generator coursegen.Generator
	catalog   *fallback.Catalog
	events    EventPublisher
	metrics   *observability.Metrics
}

// NewGenerationService wires the pipeline. A nil generator selects the local
// fallback catalog; a nil events publisher disables notifications.
func NewGenerationService(
	log *logger.Logger,
	store repos.GenerationRecordRepo,
	generator coursegen.Generator,
	catalog *fallback.Catalog,
	events EventPublisher,
	metrics *observability.Metrics,
) GenerationService {
	return &generationService{
		log:       log.With("service", "GenerationService"),
		store:     store,
		generator: generator,
		catalog:   catalog,
		events:    events,
		metrics:   metrics,
	}
}

func (s *generationService) Mode() string {
	if s.generator == nil {
		return ModeFallback
	}
	return ModeLive
}

// Run executes one generation: required-field check, render, generate (or
// fallback), validate, persist. Nothing is stored unless every step succeeds.
func (s *generationService) Run(ctx context.Context, kind coursegen.Kind, in coursegen.Input) (rec *types.GenerationRecord, out coursegen.Output, err error) {
	start := time.Now()
	mode := s.Mode()
	ctx, span := observability.StartSpan(ctx, "generation.run",
		attribute.String("generation.kind", string(kind)),
		attribute.String("generation.mode", mode),
	)
	defer func() {
		outcome := string(coursegen.CodeOf(err))
		if err != nil {
			if outcome == "" {
				outcome = "error"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		s.metrics.ObserveGeneration(string(kind), mode, outcome, time.Since(start))
	}()

	sch, err := schema.Get(kind)
	if err != nil {
		return nil, nil, err
	}
	if err := sch.CheckInput(in); err != nil {
		return nil, nil, err
	}

	snapshot := in.Clone()
	renderIn := s.resolveReferences(ctx, kind, snapshot.Clone())

	var raw, fingerprint string
	if s.generator != nil {
		prompt, rErr := prompts.Render(kind, renderIn)
		if rErr != nil {
			return nil, nil, rErr
		}
		fingerprint = prompt.Fingerprint()
		span.SetAttributes(attribute.String("generation.prompt_fingerprint", fingerprint))
		raw, err = s.generator.Generate(ctx, prompt.System, prompt.User)
		if err != nil {
			if coursegen.CodeOf(err) == "" {
				err = coursegen.NewError(coursegen.CodeService, "", err)
			}
			return nil, nil, err
		}
	} else {
		raw, err = s.catalog.Render(kind, renderIn)
		if err != nil {
			if coursegen.CodeOf(err) == "" {
				err = coursegen.NewError(coursegen.CodeService, "", fmt.Errorf("fallback render: %w", err))
			}
			return nil, nil, err
		}
	}

	out, err = validation.Validate(kind, raw)
	if err != nil {
		s.log.Warn("generation output rejected", "kind", kind, "mode", mode, "error", err)
		return nil, nil, err
	}

	rec, err = s.persist(ctx, kind, snapshot, out)
	if err != nil {
		return nil, nil, err
	}
	s.notify(ctx, rec)

	s.log.Info("generation stored",
		"kind", kind,
		"mode", mode,
		"record_id", rec.ID.String(),
		"course_id", snapshot.CourseID(),
		"prompt_fingerprint", fingerprint,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, out, nil
}

// resolveReferences fills courseFramework from a stored courseFramework
// record when only courseFrameworkId was supplied. Only the render input
// changes; unresolvable ids are ignored.
func (s *generationService) resolveReferences(ctx context.Context, kind coursegen.Kind, in coursegen.Input) coursegen.Input {
	if kind != coursegen.KindTeachingContent && kind != coursegen.KindAssessment {
		return in
	}
	if in.Present("courseFramework") || !in.Present("courseFrameworkId") {
		return in
	}
	id, err := uuid.Parse(in.Text("courseFrameworkId"))
	if err != nil {
		return in
	}
	ref, err := s.store.GetByID(ctx, nil, id)
	if err != nil {
		s.log.Warn("courseFrameworkId lookup failed", "error", err)
		return in
	}
	if ref == nil || ref.OperationKind != string(coursegen.KindCourseFramework) {
		return in
	}
	var framework map[string]any
	if err := json.Unmarshal(ref.Output, &framework); err != nil {
		return in
	}
	in["courseFramework"] = framework
	return in
}

func (s *generationService) persist(ctx context.Context, kind coursegen.Kind, snapshot coursegen.Input, out coursegen.Output) (*types.GenerationRecord, error) {
	inRaw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, coursegen.NewError(coursegen.CodeStorage, "", fmt.Errorf("encode input: %w", err))
	}
	outRaw, err := json.Marshal(out)
	if err != nil {
		return nil, coursegen.NewError(coursegen.CodeStorage, "", fmt.Errorf("encode output: %w", err))
	}
	rec := &types.GenerationRecord{
		OperationKind: string(kind),
		Input:         datatypes.JSON(inRaw),
		Output:        datatypes.JSON(outRaw),
	}
	if cid := snapshot.CourseID(); cid != "" {
		rec.CourseID = &cid
	}
	created, err := s.store.Create(ctx, nil, rec)
	if err != nil {
		s.log.Error("generation record save failed", "kind", kind, "error", err)
		return nil, coursegen.NewError(coursegen.CodeStorage, "", fmt.Errorf("save generation record: %w", err))
	}
	return created, nil
}

func (s *generationService) notify(ctx context.Context, rec *types.GenerationRecord) {
	if s.events == nil || rec == nil {
		return
	}
	ev := redisbus.Event{
		Type:          redisbus.EventGenerationCreated,
		RecordID:      rec.ID.String(),
		OperationKind: rec.OperationKind,
		CreatedAt:     rec.CreatedAt,
	}
	if rec.CourseID != nil {
		ev.CourseID = *rec.CourseID
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("generation event publish failed", "record_id", ev.RecordID, "error", err)
	}
}

func (s *generationService) GetRecord(ctx context.Context, id uuid.UUID) (*types.GenerationRecord, error) {
	rec, err := s.store.GetByID(ctx, nil, id)
	if err != nil {
		return nil, coursegen.NewError(coursegen.CodeStorage, "", err)
	}
	if rec == nil {
		return nil, coursegen.Errorf(coursegen.CodeNotFound, "", "Generation record not found")
	}
	return rec, nil
}

func (s *generationService) ListByCourse(ctx context.Context, courseID string) ([]*types.GenerationRecord, error) {
	recs, err := s.store.ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, coursegen.NewError(coursegen.CodeStorage, "", err)
	}
	return recs, nil
}

func (s *generationService) ListRecent(ctx context.Context, limit int) ([]*types.GenerationRecord, error) {
	recs, err := s.store.ListRecent(ctx, nil, limit)
	if err != nil {
		return nil, coursegen.NewError(coursegen.CodeStorage, "", err)
	}
	return recs, nil
}

func (s *generationService) Schema(kind coursegen.Kind) (map[string]any, error) {
	sch, err := schema.Get(kind)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"kind":           string(kind),
		"requiredInputs": sch.InputSchema(),
		"output":         sch.JSONSchema(),
	}, nil
}
