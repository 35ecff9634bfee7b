package domain

import "time"

// Axis identifies which classification dimension a question contributes to.
// X feeds the civilian score, Y the military score; the mapping is fixed here
// and applied everywhere scores are computed.
type Axis string

const (
	AxisCivilian Axis = "X"
	AxisMilitary Axis = "Y"
)

// Valid reports whether the axis is one of the two known dimensions.
func (a Axis) Valid() bool {
	return a == AxisCivilian || a == AxisMilitary
}

// Strategy is the acculturation quadrant derived from the signs of the two
// summed axis scores.
type Strategy string

const (
	StrategyIntegration     Strategy = "Integration"
	StrategySeparation      Strategy = "Separation"
	StrategyAssimilation    Strategy = "Assimilation"
	StrategyMarginalization Strategy = "Marginalization"
)

// Likert offsets span a fixed five-point scale.
const (
	OffsetMin = -2
	OffsetMax = 2
)

// LikertOffsets maps the canonical five-point choice labels to their signed
// score contributions.
var LikertOffsets = map[string]int{
	"Strongly Disagree": -2,
	"Disagree":          -1,
	"Neutral":           0,
	"Agree":             1,
	"Strongly Agree":    2,
}

// AnswerRecord is one question's answer: the question text, the axis the
// question contributes to, and the signed offset the chosen option carries.
// Re-selecting an option overwrites the record, it is never appended.
type AnswerRecord struct {
	Question string `json:"question"`
	Axis     Axis   `json:"axis"`
	Offset   int    `json:"offset"`
}

// DemographicsAnswers holds the optional demographic step. All categorical
// fields are single-select except Race, which is multi-select.
type DemographicsAnswers struct {
	AgeRange             string   `json:"age_range,omitempty"`
	Gender               string   `json:"gender,omitempty"`
	GenderSelfDescribed  string   `json:"gender_self_described,omitempty"`
	Race                 []string `json:"race,omitempty"`
	MilitaryStatus       string   `json:"military_status,omitempty"`
	YearsSinceSeparation string   `json:"years_since_separation,omitempty"`
	Branch               string   `json:"branch,omitempty"`
	MOS                  string   `json:"mos,omitempty"`
	Combat               string   `json:"combat,omitempty"`
}

// BenefitsAnswers holds the optional VA benefits step. BenefitsUsed and
// FirstYearHelp are multi-select with a mutually exclusive "None" sentinel.
type BenefitsAnswers struct {
	VAApplicationStatus    string   `json:"va_application_status,omitempty"`
	BenefitsUsed           []string `json:"benefits_used,omitempty"`
	DisabilityRatingStatus string   `json:"disability_rating_status,omitempty"`
	DisabilityPercentage   string   `json:"disability_percentage,omitempty"`
	FirstYearHelp          []string `json:"first_year_help,omitempty"`
	BiggestChallenge       string   `json:"biggest_challenge,omitempty"`
	BiggestChallengeOther  string   `json:"biggest_challenge_other,omitempty"`
	TransitionOpinion      string   `json:"transition_opinion,omitempty"`
	SupportOpinion         string   `json:"support_opinion,omitempty"`
}

// ContactAnswers is the final required step. Email is validated against an
// allow-listed set of TLD patterns before submission.
type ContactAnswers struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Subscribe  bool   `json:"subscribe"`
	StoryOptIn bool   `json:"story_opt_in"`
}

// DraftState is the in-flight wizard state for one respondent. Question
// answers live in their own map keyed by question text; the demographic,
// benefits and contact sub-objects are named fields so they can never collide
// with a question key. Consistency model is last writer wins: Set is a full
// replace and there is no merge primitive.
type DraftState struct {
	Answers           map[string]AnswerRecord `json:"answers"`
	Demographics      DemographicsAnswers     `json:"demographics"`
	Benefits          BenefitsAnswers         `json:"va_benefits"`
	Contact           ContactAnswers          `json:"contact"`
	TrackingSessionID string                  `json:"tracking_session_id,omitempty"`
}

// NewDraftState returns an empty draft ready to accept answers.
func NewDraftState() DraftState {
	return DraftState{Answers: make(map[string]AnswerRecord)}
}

// SurveySubmission is the canonical persisted record, created exactly once per
// completed wizard pass and immutable afterwards except for admin deletion.
type SurveySubmission struct {
	ID            string              `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	Email         string              `json:"email"`
	Subscribe     bool                `json:"subscribe"`
	StoryOptIn    bool                `json:"story_opt_in"`
	MilitaryScore int                 `json:"military_score"`
	CivilianScore int                 `json:"civilian_score"`
	Strategy      Strategy            `json:"strategy"`
	Demographics  DemographicsAnswers `json:"demographics"`
	Benefits      BenefitsAnswers     `json:"va_benefits"`
}

// QuestionResponse is one answered question belonging to a submission.
// Category comes from a text-exact catalog lookup with an "Unknown" fallback.
type QuestionResponse struct {
	SubmissionID   string `json:"submission_id"`
	Question       string `json:"question"`
	Category       string `json:"category"`
	Axis           Axis   `json:"axis"`
	Value          int    `json:"value"`
	ResponseTimeMS *int   `json:"response_time_ms,omitempty"`
}

// AnalyticsSession tracks a submission in progress. Its ID starts as a
// client-generated session id and is rewritten to the submission id when the
// draft is reconciled; an abandoned session simply never gets a CompletedAt.
type AnalyticsSession struct {
	ID                string     `json:"id"`
	TotalQuestions    int        `json:"total_questions"`
	QuestionsAnswered int        `json:"questions_answered"`
	CompletionRate    float64    `json:"completion_rate"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	DeviceType        string     `json:"device_type,omitempty"`
	Browser           string     `json:"browser,omitempty"`
	DroppedAtQuestion *int       `json:"dropped_at_question,omitempty"`
}

// Question is a catalog entry. The ID is a stable opaque identifier; Text is
// a display label that also still serves as the join key for responses.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Axis     Axis   `json:"axis"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
	Position int    `json:"position"`
}

// AdminAccount is a credentialed administrator identity.
type AdminAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Access request lifecycle states.
const (
	AccessPending  = "pending"
	AccessApproved = "approved"
	AccessDenied   = "denied"
)

// AccessRequest is a visitor's ask for the shared beta code.
type AccessRequest struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}
