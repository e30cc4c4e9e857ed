package services

import (
	"embed"
	"strings"
	"text/template"

	"osvillage/internal/models"
)

//go:embed templates/*.tmpl
var aiTemplatesFS embed.FS

// Template names as constants
const (
	HintPromptTemplate     = "hint_prompt.tmpl"
	FeedbackPromptTemplate = "feedback_prompt.tmpl"
	QuestionPromptTemplate = "question_prompt.tmpl"
	QuizPromptTemplate     = "quiz_prompt.tmpl"
)

// AITemplateData holds data for rendering AI prompt templates
type AITemplateData struct {
	Character string

	// Hint specific
	Topic            string
	Stage            string
	GameStateJSON    string
	ErrorHistoryJSON string

	// Feedback specific
	Summary models.SessionSummary

	// Question specific
	Question string
	Context  string

	// Quiz specific
	Level string
}

// AITemplateManager manages AI prompt templates
type AITemplateManager struct {
	templates *template.Template
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"deref": func(v *int32) int32 {
		if v == nil {
			return 0
		}
		return *v
	},
}

// NewAITemplateManager creates a new template manager
func NewAITemplateManager() (result0 *AITemplateManager, err error) {
	templates, err := template.New("").Funcs(templateFuncs).ParseFS(aiTemplatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	return &AITemplateManager{
		templates: templates,
	}, nil
}

// RenderTemplate renders a template with the given data
func (tm *AITemplateManager) RenderTemplate(templateName string, data AITemplateData) (result0 string, err error) {
	if data.Character == "" {
		data.Character = models.CharacterName
	}
	var buf strings.Builder
	err = tm.templates.ExecuteTemplate(&buf, templateName, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
