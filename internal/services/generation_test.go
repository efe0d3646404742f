package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisbus "github.com/yungbote/yanxue-backend/internal/clients/redis"
	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/fallback"
	"github.com/yungbote/yanxue-backend/internal/coursegen/prompts"
	"github.com/yungbote/yanxue-backend/internal/data/repos"
	"github.com/yungbote/yanxue-backend/internal/data/repos/testutil"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

type stubStore struct {
	mu      sync.Mutex
	records []*types.GenerationRecord
	failErr error
}

func (s *stubStore) Create(ctx context.Context, tx *gorm.DB, rec *types.GenerationRecord) (*types.GenerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	rec.ID = uuid.New()
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *stubStore) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GenerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (s *stubStore) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.GenerationRecord, error) {
	return nil, nil
}

func (s *stubStore) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.GenerationRecord, error) {
	return nil, nil
}

func (s *stubStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

var _ repos.GenerationRecordRepo = (*stubStore)(nil)

type stubGenerator struct {
	mu      sync.Mutex
	calls   int
	reply   string
	err     error
	lastSys string
	lastUsr string
}

func (g *stubGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastSys, g.lastUsr = system, user
	return g.reply, g.err
}

type recordingPublisher struct {
	events []redisbus.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev redisbus.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func mustCatalog(t *testing.T) *fallback.Catalog {
	t.Helper()
	c, err := fallback.Load(nil)
	require.NoError(t, err)
	return c
}

func demandInput() coursegen.Input {
	return coursegen.Input{
		"courseTitle":    "北京历史文化研学之旅",
		"targetAudience": "初中生",
		"duration":       "5",
		"objectives":     "培养历史认知",
	}
}

const validDemandReply = `{"demandSummary":"s","targetAudienceAnalysis":"a","coreObjectives":["o"],"keyTopics":["k"]}`

func TestRunMissingFieldDoesNotCallOrWrite(t *testing.T) {
	store := &stubStore{}
	gen := &stubGenerator{reply: validDemandReply}
	svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

	in := demandInput()
	delete(in, "objectives")
	_, _, err := svc.Run(context.Background(), coursegen.KindDemandAnalysis, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &coursegen.Error{Code: coursegen.CodeMissingRequiredField, Field: "objectives"}), "got %v", err)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 0, store.count())
}

func TestRunUnknownKind(t *testing.T) {
	store := &stubStore{}
	svc := NewGenerationService(logger.Nop(), store, nil, mustCatalog(t), nil, nil)
	_, _, err := svc.Run(context.Background(), coursegen.Kind("poem"), coursegen.Input{})
	assert.True(t, errors.Is(err, coursegen.ErrUnknownKind))
	assert.Equal(t, 0, store.count())
}

func TestRunLiveFailuresDoNotWrite(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		err   error
		want  *coursegen.Error
	}{
		{"not json", "the model rambled", nil, coursegen.ErrParse},
		{"json array", `[1,2]`, nil, coursegen.ErrParse},
		{"missing scalar", `{"targetAudienceAnalysis":"a"}`, nil, coursegen.ErrValidation},
		{"wrong shape", `{"demandSummary":"s","targetAudienceAnalysis":"a","keyTopics":"one"}`, nil, coursegen.ErrValidation},
		{"quota", "", coursegen.Errorf(coursegen.CodeQuota, "", "429"), coursegen.ErrQuota},
		{"transport", "", coursegen.Errorf(coursegen.CodeTransport, "", "timeout"), coursegen.ErrTransport},
		{"untyped", "", errors.New("boom"), coursegen.ErrService},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			store := &stubStore{}
			gen := &stubGenerator{reply: tc.reply, err: tc.err}
			svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)
			_, _, err := svc.Run(context.Background(), coursegen.KindDemandAnalysis, demandInput())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, 1, gen.calls)
			assert.Equal(t, 0, store.count())
		})
	}
}

func TestRunLiveStoresInputSnapshot(t *testing.T) {
	store := &stubStore{}
	gen := &stubGenerator{reply: "```json\n" + validDemandReply + "\n```"}
	pub := &recordingPublisher{}
	svc := NewGenerationService(logger.Nop(), store, gen, nil, pub, nil)

	in := demandInput()
	in["courseId"] = "course-1"
	rec, out, err := svc.Run(context.Background(), coursegen.KindDemandAnalysis, in)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Contains(t, gen.lastSys, "研学")
	assert.Contains(t, gen.lastUsr, "北京历史文化研学之旅")
	assert.Equal(t, []any{}, out["teachingMethods"])
	assert.Equal(t, []any{}, out["resourcesRequired"])

	var stored map[string]any
	require.NoError(t, json.Unmarshal(rec.Input, &stored))
	assert.Equal(t, map[string]any(in), stored)
	require.NotNil(t, rec.CourseID)
	assert.Equal(t, "course-1", *rec.CourseID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, redisbus.EventGenerationCreated, pub.events[0].Type)
	assert.Equal(t, "course-1", pub.events[0].CourseID)
}

func TestRunPublishFailureIsNotFatal(t *testing.T) {
	store := &stubStore{}
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewGenerationService(logger.Nop(), store, &stubGenerator{reply: validDemandReply}, nil, pub, nil)
	_, _, err := svc.Run(context.Background(), coursegen.KindDemandAnalysis, demandInput())
	require.NoError(t, err)
	assert.Equal(t, 1, store.count())
}

func TestRunStorageFailure(t *testing.T) {
	store := &stubStore{failErr: errors.New("disk full")}
	svc := NewGenerationService(logger.Nop(), store, nil, mustCatalog(t), nil, nil)
	rec, out, err := svc.Run(context.Background(), coursegen.KindDemandAnalysis, demandInput())
	assert.True(t, errors.Is(err, coursegen.ErrStorage), "got %v", err)
	assert.Nil(t, rec)
	assert.Nil(t, out)
}

func TestRunFallbackDemandAnalysis(t *testing.T) {
	store := &stubStore{}
	svc := NewGenerationService(logger.Nop(), store, nil, mustCatalog(t), nil, nil)
	assert.Equal(t, ModeFallback, svc.Mode())

	_, out, err := svc.Run(context.Background(), coursegen.KindDemandAnalysis, demandInput())
	require.NoError(t, err)
	assert.NotEmpty(t, out["demandSummary"])
	assert.NotEmpty(t, out["targetAudienceAnalysis"])
	for _, f := range []string{"coreObjectives", "keyTopics", "teachingMethods", "resourcesRequired"} {
		list, ok := out[f].([]any)
		require.True(t, ok, f)
		assert.NotEmpty(t, list, f)
	}
	assert.Equal(t, 1, store.count())
}

func TestRunFallbackItineraryMatchesDuration(t *testing.T) {
	svc := NewGenerationService(logger.Nop(), &stubStore{}, nil, mustCatalog(t), nil, nil)
	_, out, err := svc.Run(context.Background(), coursegen.KindItinerary, coursegen.Input{
		"courseTitle":     "X",
		"duration":        "3",
		"courseStructure": "...",
		"location":        "北京",
	})
	require.NoError(t, err)
	days, ok := out["dailyItineraries"].([]any)
	require.True(t, ok)
	assert.Len(t, days, 3)
}

func TestRunResolvesCourseFrameworkID(t *testing.T) {
	store := &stubStore{}
	framework := &types.GenerationRecord{
		OperationKind: string(coursegen.KindCourseFramework),
		Input:         datatypes.JSON(`{}`),
		Output:        datatypes.JSON(`{"courseObjectives":["理解中轴线"]}`),
	}
	_, err := store.Create(context.Background(), nil, framework)
	require.NoError(t, err)

	gen := &stubGenerator{reply: `{"contentRecommendations":[],"interactiveActivities":["寻宝"]}`}
	svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

	in := coursegen.Input{
		"courseFrameworkId": framework.ID.String(),
		"topics":            "中轴线",
		"targetAudience":    "初中生",
	}
	rec, _, err := svc.Run(context.Background(), coursegen.KindTeachingContent, in)
	require.NoError(t, err)
	assert.Contains(t, gen.lastUsr, "理解中轴线")

	var stored map[string]any
	require.NoError(t, json.Unmarshal(rec.Input, &stored))
	assert.NotContains(t, stored, "courseFramework")
}

func TestRunDanglingCourseFrameworkIDIsIgnored(t *testing.T) {
	gen := &stubGenerator{reply: `{}`}
	svc := NewGenerationService(logger.Nop(), &stubStore{}, gen, nil, nil, nil)
	_, _, err := svc.Run(context.Background(), coursegen.KindAssessment, coursegen.Input{
		"courseFrameworkId": uuid.NewString(),
		"objectives":        "a",
		"targetAudience":    "b",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestListByCourseInsertionOrder(t *testing.T) {
	db := testutil.DB(t)
	store := repos.NewGenerationRecordRepo(db, testutil.Logger(t))
	svc := NewGenerationService(testutil.Logger(t), store, nil, mustCatalog(t), nil, nil)
	ctx := context.Background()

	first := demandInput()
	first["courseId"] = "c-42"
	r1, _, err := svc.Run(ctx, coursegen.KindDemandAnalysis, first)
	require.NoError(t, err)

	second := coursegen.Input{
		"courseTitle":     "X",
		"duration":        "2",
		"courseStructure": "...",
		"location":        "北京",
		"courseId":        "c-42",
	}
	r2, _, err := svc.Run(ctx, coursegen.KindItinerary, second)
	require.NoError(t, err)

	_, _, err = svc.Run(ctx, coursegen.KindDemandAnalysis, demandInput())
	require.NoError(t, err)

	list, err := svc.ListByCourse(ctx, "c-42")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r1.ID, list[0].ID)
	assert.Equal(t, r2.ID, list[1].ID)

	got, err := svc.GetRecord(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, string(coursegen.KindItinerary), got.OperationKind)

	_, err = svc.GetRecord(ctx, uuid.New())
	assert.True(t, errors.Is(err, coursegen.ErrNotFound))
}

func TestSchemaDescribesKind(t *testing.T) {
	svc := NewGenerationService(logger.Nop(), &stubStore{}, nil, mustCatalog(t), nil, nil)
	doc, err := svc.Schema(coursegen.KindItinerary)
	require.NoError(t, err)
	assert.Equal(t, "itinerary", doc["kind"])
	assert.NotNil(t, doc["output"])

	_, err = svc.Schema(coursegen.Kind("nope"))
	assert.True(t, errors.Is(err, coursegen.ErrUnknownKind))
}

func TestRunLogsPromptFingerprint(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	svc := NewGenerationService(log, &stubStore{}, &stubGenerator{reply: validDemandReply}, nil, nil, nil)

	_, _, err := svc.Run(context.Background(), coursegen.KindDemandAnalysis, demandInput())
	require.NoError(t, err)

	want, err := prompts.Render(coursegen.KindDemandAnalysis, demandInput())
	require.NoError(t, err)
	stored := logs.FilterMessage("generation stored").All()
	require.Len(t, stored, 1)
	assert.Equal(t, want.Fingerprint(), stored[0].ContextMap()["prompt_fingerprint"])
}
