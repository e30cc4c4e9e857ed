package services

// JSON Schema definitions for structured AI responses. The model is asked for JSON in the
// prompt and the reply is checked against these before it is decoded.
const (
	FeedbackSchema = `{
		"type": "object",
		"properties": {
			"evaluation": {"type": "string", "minLength": 1},
			"suggestions": {"type": "array", "items": {"type": "string"}},
			"review_topics": {"type": "array", "items": {"type": "string"}},
			"next_steps": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["evaluation", "suggestions", "review_topics", "next_steps"]
	}`

	QuizSchema = `{
		"type": "object",
		"properties": {
			"question": {"type": "string", "minLength": 1},
			"options": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
			"correct_answer": {"type": "string", "enum": ["A", "B", "C", "D"]},
			"explanation": {"type": "string"}
		},
		"required": ["question", "options", "correct_answer", "explanation"]
	}`
)
