package analysis

const (
	// RecentWindowDays is the width of the "recent" window in days.
	RecentWindowDays = 30

	// TrendWindow is the number of most-recent attempts used for the trend.
	TrendWindow = 10

	// TrendMinAttempts is the minimum number of attempts needed for a trend.
	TrendMinAttempts = 3

	// TrendDeadBand is the mean-score difference (in points) within which
	// performance is considered stable.
	TrendDeadBand = 5.0

	// RecentAccuracyWindow caps how many of the most recent attempts tagging
	// a concept contribute to its recent accuracy.
	RecentAccuracyWindow = 5

	// ImprovementThreshold is the accuracy below which a weakness needs work.
	ImprovementThreshold = 0.7

	// DefaultLimit is the default number of weakness/strength entries.
	DefaultLimit = 10
)

// Trend describes the direction of recent scores.
type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// Summary is the headline view of a student's attempt history.
type Summary struct {
	TotalAttempts    int     `json:"total_attempts"`
	RecentAttempts   int     `json:"recent_attempts"`
	OverallAverage   float64 `json:"overall_average"`
	RecentAverage    float64 `json:"recent_average"`
	Trend            Trend   `json:"trend"`
	LearningVelocity float64 `json:"learning_velocity"`
}

// Weakness is a concept the student repeatedly struggles with.
type Weakness struct {
	Concept           string  `json:"concept"`
	OccurrenceCount   int     `json:"occurrence_count"`
	TotalQuestions    int     `json:"total_questions"`
	CorrectAnswers    int     `json:"correct_answers"`
	Accuracy          float64 `json:"accuracy"`
	RecentAccuracy    float64 `json:"recent_accuracy"`
	PriorityScore     float64 `json:"priority_score"`
	ImprovementNeeded bool    `json:"improvement_needed"`
}

// MasteryLevel grades how secure a strength is.
type MasteryLevel string

const (
	MasteryHigh       MasteryLevel = "high"
	MasteryMedium     MasteryLevel = "medium"
	MasteryDeveloping MasteryLevel = "developing"
)

// Strength is a concept the student handles well.
type Strength struct {
	Concept         string       `json:"concept"`
	Accuracy        float64      `json:"accuracy"`
	OccurrenceCount int          `json:"occurrence_count"`
	MasteryLevel    MasteryLevel `json:"mastery_level"`
}

// Profile bundles every signal derived from one read of the history.
type Profile struct {
	StudentID   string      `json:"student_id"`
	CourseID    string      `json:"course_id"`
	Summary     Summary     `json:"summary"`
	Weaknesses  []Weakness  `json:"weaknesses"`
	Strengths   []Strength  `json:"strengths"`
	Velocity    Velocity    `json:"velocity"`
	Consistency Consistency `json:"consistency"`
	Efficiency  Efficiency  `json:"efficiency"`
	TimeOfDay   TimeOfDay   `json:"time_of_day"`
}

// Insufficient reports whether the history is too short for adaptation.
func (p *Profile) Insufficient() bool {
	return p.Summary.TotalAttempts < TrendMinAttempts
}

// Concepts returns the concept names of ws in order.
func Concepts(ws []Weakness) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Concept
	}
	return out
}
