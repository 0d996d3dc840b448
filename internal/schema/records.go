package schema

// EffortScore is the closed set of effort labels a TaskAnalysis may carry.
type EffortScore string

const (
	EffortLow      EffortScore = "Low"
	EffortMedium   EffortScore = "Medium"
	EffortHigh     EffortScore = "High"
	EffortCritical EffortScore = "Critical"
)

// EffortScores lists every accepted EffortScore in ascending order.
var EffortScores = []EffortScore{EffortLow, EffortMedium, EffortHigh, EffortCritical}

func (e EffortScore) Valid() bool {
	for _, s := range EffortScores {
		if e == s {
			return true
		}
	}
	return false
}

// TimeUnspecified is the literal the model uses when a task carries no time.
const TimeUnspecified = "unspecified"

// TaskAnalysis is the structured record returned by /api/analyze.
type TaskAnalysis struct {
	Text        string      `json:"text"`
	Time        string      `json:"time"`
	Category    string      `json:"category"`
	Urgent      bool        `json:"urgent"`
	Note        string      `json:"note"`
	EffortScore EffortScore `json:"effort_score"`
}

// SuggestionCount is how many completions a SuggestionList must hold.
const SuggestionCount = 5

// SuggestionList is the record returned by /api/suggest.
type SuggestionList struct {
	Suggestions []string `json:"suggestions"`
}
