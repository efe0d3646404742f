package coursegen

import "strings"

// Kind names one of the five generation workflows.
type Kind string

const (
	KindDemandAnalysis  Kind = "demandAnalysis"
	KindCourseFramework Kind = "courseFramework"
	KindTeachingContent Kind = "teachingContent"
	KindItinerary       Kind = "itinerary"
	KindAssessment      Kind = "assessment"
)

var allKinds = []Kind{
	KindDemandAnalysis,
	KindCourseFramework,
	KindTeachingContent,
	KindItinerary,
	KindAssessment,
}

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

// ParseKind accepts the canonical camelCase name, case-insensitively.
func ParseKind(raw string) (Kind, error) {
	s := strings.TrimSpace(raw)
	for _, known := range allKinds {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", Errorf(CodeUnknownKind, "", "unknown operation kind %q", s)
}
