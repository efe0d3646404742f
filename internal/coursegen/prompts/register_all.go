package prompts

import "github.com/yungbote/yanxue-backend/internal/coursegen"

func init() { RegisterAll() }

// RegisterAll registers the five course-authoring prompts.
func RegisterAll() {
	RegisterSpec(Spec{
		Kind:    coursegen.KindDemandAnalysis,
		Version: 1,
		System:  `你是一位资深的研学旅行课程开发专家，请根据用户提供的课程信息，生成一份详细的课程需求分析报告。`,
		User: `
请分析以下研学旅行课程需求，并生成一份结构化的需求分析报告：
- 课程标题：{{.courseTitle}}
- 目标人群：{{.targetAudience}}
- 课程时长：{{.duration}}天
- 课程目标：{{.objectives}}`,
		Fields: []string{"courseTitle", "targetAudience", "duration", "objectives"},
	})

	RegisterSpec(Spec{
		Kind:    coursegen.KindCourseFramework,
		Version: 1,
		System:  `你是一位资深的研学旅行课程开发专家，请根据课程需求分析，生成一份完整的课程框架。`,
		User: `
请根据以下课程信息和需求分析，生成一份结构化的课程框架：
- 课程标题：{{.courseTitle}}
- 需求分析：{{.demandAnalysis}}`,
		Fields: []string{"courseTitle", "demandAnalysis"},
	})

	RegisterSpec(Spec{
		Kind:    coursegen.KindTeachingContent,
		Version: 1,
		System:  `你是一位资深的研学旅行课程开发专家，请根据课程框架和目标人群，推荐合适的教学内容和资源。`,
		User: `
请根据以下课程信息，推荐合适的教学内容和资源：
{{if .courseTitle}}- 课程标题：{{.courseTitle}}
{{end}}{{if .topics}}- 教学主题：{{.topics}}
{{end}}{{if .courseFramework}}- 课程框架：{{.courseFramework}}
{{else if .courseFrameworkId}}- 课程框架编号：{{.courseFrameworkId}}
{{end}}- 目标人群：{{.targetAudience}}`,
		Fields: []string{"courseTitle", "topics", "courseFramework", "courseFrameworkId", "targetAudience"},
	})

	RegisterSpec(Spec{
		Kind:    coursegen.KindItinerary,
		Version: 1,
		System:  `你是一位资深的研学旅行行程规划专家，请根据课程结构和时间安排，优化研学行程。`,
		User: `
请根据以下课程信息，生成一份优化的研学行程：
- 课程标题：{{.courseTitle}}
- 课程时长：{{.duration}}天
- 课程结构：{{.courseStructure}}
- 研学地点：{{.location}}`,
		Fields: []string{"courseTitle", "duration", "courseStructure", "location"},
	})

	RegisterSpec(Spec{
		Kind:    coursegen.KindAssessment,
		Version: 1,
		System:  `你是一位资深的研学旅行课程评估专家，请根据课程目标和目标人群，构建一套完整的课程评估体系。`,
		User: `
请根据以下课程信息，构建一套完整的课程评估体系：
{{if .courseTitle}}- 课程标题：{{.courseTitle}}
{{end}}{{if .courseFramework}}- 课程框架：{{.courseFramework}}
{{else if .courseFrameworkId}}- 课程框架编号：{{.courseFrameworkId}}
{{end}}{{if .objectives}}- 课程目标：{{.objectives}}
{{end}}{{if .courseObjectives}}- 课程目标：{{.courseObjectives}}
{{end}}- 目标人群：{{.targetAudience}}`,
		Fields: []string{"courseTitle", "courseFramework", "courseFrameworkId", "objectives", "courseObjectives", "targetAudience"},
	})
}
