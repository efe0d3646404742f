package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/schema"
)

func sampleInputs() map[coursegen.Kind]coursegen.Input {
	return map[coursegen.Kind]coursegen.Input{
		coursegen.KindDemandAnalysis: {
			"courseTitle": "北京历史文化研学之旅", "targetAudience": "初中生", "duration": "5", "objectives": "培养历史认知",
		},
		coursegen.KindCourseFramework: {
			"courseTitle": "北京历史文化研学之旅", "demandAnalysis": map[string]any{"demandSummary": "s", "keyTopics": []any{"故宫"}},
		},
		coursegen.KindTeachingContent: {
			"courseFramework": map[string]any{"courseObjectives": []any{"a"}}, "topics": "长城", "targetAudience": "高中生",
		},
		coursegen.KindItinerary: {
			"courseTitle": "X", "duration": 3.0, "courseStructure": []any{map[string]any{"name": "模块一"}}, "location": "北京",
		},
		coursegen.KindAssessment: {
			"courseTitle": "X", "objectives": []any{"目标一", "目标二"}, "targetAudience": "小学生",
		},
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	for kind, in := range sampleInputs() {
		p1, err := Render(kind, in)
		require.NoError(t, err, kind)
		p2, err := Render(kind, in.Clone())
		require.NoError(t, err, kind)
		assert.Equal(t, p1.System, p2.System, kind)
		assert.Equal(t, p1.User, p2.User, kind)
		assert.Equal(t, p1.Fingerprint(), p2.Fingerprint(), kind)
	}
}

func TestRenderListsEveryOutputField(t *testing.T) {
	for kind, in := range sampleInputs() {
		p, err := Render(kind, in)
		require.NoError(t, err)
		user := p.User
		s, err := schema.Get(kind)
		require.NoError(t, err)
		for _, f := range s.Outputs {
			assert.Contains(t, user, `"`+f.Name+`"`, "%s prompt should name %s", kind, f.Name)
		}
	}
}

func TestRenderInterpolatesInputsVerbatim(t *testing.T) {
	p, err := Render(coursegen.KindDemandAnalysis, sampleInputs()[coursegen.KindDemandAnalysis])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.System, "你是一位资深的研学旅行课程开发专家"))
	assert.Contains(t, p.User, "- 课程标题：北京历史文化研学之旅")
	assert.Contains(t, p.User, "- 课程时长：5天")

	p, err = Render(coursegen.KindItinerary, sampleInputs()[coursegen.KindItinerary])
	require.NoError(t, err)
	assert.Contains(t, p.User, `- 课程结构：[{"name":"模块一"}]`)
	assert.Contains(t, p.User, "- 课程时长：3天")
}

func TestRenderAppendsUnknownFieldsSorted(t *testing.T) {
	in := sampleInputs()[coursegen.KindDemandAnalysis]
	in["season"] = "秋季"
	in["budget"] = 3000.0
	in["courseId"] = "c-1"
	p, err := Render(coursegen.KindDemandAnalysis, in)
	require.NoError(t, err)
	assert.Contains(t, p.User, "补充信息：\n- budget：3000\n- season：秋季")
	assert.NotContains(t, p.User, "c-1")
}

func TestBuildRejectsMissingInput(t *testing.T) {
	_, err := Build(coursegen.KindItinerary, Input{"courseTitle": "X"})
	require.Error(t, err)
	assert.ErrorIs(t, err, coursegen.ErrMissingRequiredField)

	_, err = Build(coursegen.Kind("nope"), Input{})
	assert.ErrorIs(t, err, coursegen.ErrUnknownKind)
}

func TestFingerprintChangesWithInput(t *testing.T) {
	a, err := Build(coursegen.KindDemandAnalysis, FromForm(sampleInputs()[coursegen.KindDemandAnalysis]))
	require.NoError(t, err)
	in := sampleInputs()[coursegen.KindDemandAnalysis]
	in["duration"] = "6"
	b, err := Build(coursegen.KindDemandAnalysis, FromForm(in))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
	assert.Equal(t, "demandAnalysis", a.Name)
}
