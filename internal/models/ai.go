package models

// ResultSource says where an AI-backed value came from, so callers can tell a
// model answer from a fixed placeholder without comparing strings.
type ResultSource string

const (
	// SourceGenerated is a genuine model answer that passed validation
	SourceGenerated ResultSource = "generated"
	// SourceFallback is a fixed value used because the model output did not validate
	SourceFallback ResultSource = "fallback"
	// SourceUnconfigured means no API key is set, so no call was made
	SourceUnconfigured ResultSource = "unconfigured"
	// SourceUnavailable means the provider call failed
	SourceUnavailable ResultSource = "unavailable"
	// SourceNotFound means the referenced session does not exist
	SourceNotFound ResultSource = "not_found"
	// SourceFailed means a local error interrupted the operation
	SourceFailed ResultSource = "failed"
)

// Degraded reports whether the value is a fixed placeholder rather than model output
func (s ResultSource) Degraded() bool {
	return s != SourceGenerated
}

// Fixed texts returned in degraded mode
const (
	AIUnconfiguredMessage = "The AI service is not configured. Please set an API key."
	AIUnavailableMessage  = "The AI assistant cannot answer right now. Please try again later."
)

// CharacterName is the village mentor who voices hints and answers
const CharacterName = "Uncle Byte"

// Feedback is the four-field evaluation of one finished session
type Feedback struct {
	Evaluation   string   `json:"evaluation"`
	Suggestions  []string `json:"suggestions"`
	ReviewTopics []string `json:"review_topics"`
	NextSteps    []string `json:"next_steps"`
}

// Quiz is a four-option multiple-choice question
type Quiz struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// SessionSummary is what the feedback prompt is built from.
// TimeSpent, ErrorCount and ErrorTypes are placeholders that are never computed.
type SessionSummary struct {
	GameName   string   `json:"game_name"`
	Score      *int32   `json:"score"`
	TimeSpent  int      `json:"time_spent"`
	ErrorCount int      `json:"error_count"`
	ErrorTypes []string `json:"error_types"`
}

// TextResult carries a free-text AI answer and its provenance
type TextResult struct {
	Text   string       `json:"text"`
	Source ResultSource `json:"source"`
}

// FeedbackResult carries structured feedback and its provenance
type FeedbackResult struct {
	Feedback Feedback     `json:"feedback"`
	Source   ResultSource `json:"source"`
}

// QuizResult carries a quiz and its provenance
type QuizResult struct {
	Quiz   Quiz         `json:"quiz"`
	Source ResultSource `json:"source"`
}

// FallbackFeedback is returned when the model's feedback is not valid JSON of the right shape
func FallbackFeedback() Feedback {
	return Feedback{
		Evaluation:   "Nice work, keep it up!",
		Suggestions:  []string{"Practice the basic operations more", "Keep an eye on your time"},
		ReviewTopics: []string{"Core concepts"},
		NextSteps:    []string{"Move on to the next level"},
	}
}

// NoRecordFeedback is returned for an unknown session id
func NoRecordFeedback() Feedback {
	return Feedback{
		Evaluation:   "No game record found",
		Suggestions:  []string{},
		ReviewTopics: []string{},
		NextSteps:    []string{},
	}
}

// FailedFeedback is returned when feedback generation hits a local error
func FailedFeedback() Feedback {
	return Feedback{
		Evaluation:   "Feedback generation failed, please try again later",
		Suggestions:  []string{},
		ReviewTopics: []string{},
		NextSteps:    []string{},
	}
}

// FallbackQuiz is returned when the model's quiz does not validate; the topic is embedded in the question
func FallbackQuiz(topic string) Quiz {
	return Quiz{
		Question:      "In the smart village, what is " + topic + " most like?",
		Options:       []string{"Option A", "Option B", "Option C", "Option D"},
		CorrectAnswer: "A",
		Explanation:   "This is a fundamental concept, so study it carefully!",
	}
}
