package schema

import (
	"github.com/yungbote/yanxue-backend/internal/coursegen"
)

// Schema is the fixed contract for one operation kind.
type Schema struct {
	Kind           coursegen.Kind
	RequiredInputs []Group
	Outputs        []Field
}

var registry = map[coursegen.Kind]Schema{
	coursegen.KindDemandAnalysis: {
		Kind:           coursegen.KindDemandAnalysis,
		RequiredInputs: []Group{one("courseTitle"), one("targetAudience"), one("duration"), one("objectives")},
		Outputs: []Field{
			scalar("demandSummary", "需求摘要"),
			scalar("targetAudienceAnalysis", "目标人群分析"),
			scalars("coreObjectives", "核心目标列表"),
			scalars("keyTopics", "关键主题列表"),
			scalars("teachingMethods", "建议教学方法列表"),
			scalars("resourcesRequired", "所需资源列表"),
		},
	},
	coursegen.KindCourseFramework: {
		Kind:           coursegen.KindCourseFramework,
		RequiredInputs: []Group{one("courseTitle"), one("demandAnalysis")},
		Outputs: []Field{
			scalars("courseObjectives", "课程目标列表"),
			records("courseStructure", "课程结构，包含每个模块的名称、目标、内容、时长和教学方法",
				"name", "target", "content", "duration", "teachingMethods"),
			scalars("teachingStrategies", "教学策略列表"),
			scalars("assessmentMethods", "评估方法列表"),
		},
	},
	coursegen.KindTeachingContent: {
		Kind: coursegen.KindTeachingContent,
		RequiredInputs: []Group{
			anyOf("courseFrameworkId", "courseFramework"),
			anyOf("topics", "courseTitle"),
			one("targetAudience"),
		},
		Outputs: []Field{
			records("contentRecommendations", "教学内容推荐列表，每个推荐包含标题、类型、描述和使用建议",
				"title", "type", "description", "usageSuggestions"),
			records("resourceRecommendations", "资源推荐列表，每个资源包含标题、类型、URL和使用建议",
				"title", "type", "url", "usageSuggestions"),
			scalars("interactiveActivities", "互动活动建议列表"),
		},
	},
	coursegen.KindItinerary: {
		Kind:           coursegen.KindItinerary,
		RequiredInputs: []Group{one("courseTitle"), one("duration"), one("courseStructure"), one("location")},
		Outputs: []Field{
			records("dailyItineraries", "每日行程列表，每个行程包含日期、时间安排、活动内容、地点、交通方式和注意事项",
				"date", "timeSchedule", "activities", "location", "transportation", "notes"),
			record("logistics", "后勤安排，包含交通、住宿、餐饮和安全措施",
				"transportation", "accommodation", "catering", "safetyMeasures"),
			scalar("contingencyPlan", "应急预案"),
		},
	},
	coursegen.KindAssessment: {
		Kind: coursegen.KindAssessment,
		RequiredInputs: []Group{
			anyOf("courseFrameworkId", "courseTitle"),
			anyOf("objectives", "courseObjectives"),
			one("targetAudience"),
		},
		Outputs: []Field{
			records("assessmentDimensions", "评估维度列表，每个维度包含名称、描述和权重",
				"name", "description", "weight"),
			records("assessmentMethods", "评估方法列表，每个方法包含名称、适用维度和实施建议",
				"name", "applicableDimensions", "implementationSuggestions"),
			records("evaluationCriteria", "评估标准，包含不同等级的描述和分数范围",
				"level", "description", "scoreRange"),
			scalars("dataCollectionMethods", "数据收集方法列表"),
			scalars("reportingStructure", "评估报告结构"),
		},
	},
}

// Get returns the schema for kind or a coursegen UnknownKind error.
func Get(kind coursegen.Kind) (Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return Schema{}, coursegen.Errorf(coursegen.CodeUnknownKind, "", "unknown operation kind %q", string(kind))
	}
	return s, nil
}

// RequiredInputFields returns the ordered required groups.
func (s Schema) RequiredInputFields() []Group {
	out := make([]Group, len(s.RequiredInputs))
	copy(out, s.RequiredInputs)
	return out
}

// OutputFields maps field name to shape.
func (s Schema) OutputFields() map[string]FieldShape {
	out := make(map[string]FieldShape, len(s.Outputs))
	for _, f := range s.Outputs {
		out[f.Name] = f.FieldShape
	}
	return out
}

func (s Schema) Output(name string) (Field, bool) {
	for _, f := range s.Outputs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FirstMissing returns the first required group no alternative of which is
// present in the input.
func (s Schema) FirstMissing(in coursegen.Input) (Group, bool) {
	for _, g := range s.RequiredInputs {
		satisfied := false
		for _, name := range g {
			if in.Present(name) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return g, true
		}
	}
	return nil, false
}

// CheckInput fails with MissingRequiredField naming the first missing group.
func (s Schema) CheckInput(in coursegen.Input) error {
	if g, missing := s.FirstMissing(in); missing {
		return coursegen.Errorf(coursegen.CodeMissingRequiredField, g.String(), "missing required field: %s", g.String())
	}
	return nil
}
