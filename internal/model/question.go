package model

type Requirement string

const (
	RequirementRequired Requirement = "required"
	RequirementOptional Requirement = "optional"
	RequirementUnknown  Requirement = "unknown"
)

type ExtractedQuestionCandidate struct {
	QuestionText       string      `json:"questionText"`
	Type               string      `json:"type"`
	IsExplicitQuestion bool        `json:"isExplicitQuestion"`
	IsRequired         Requirement `json:"isRequired"`
	Deliverable        string      `json:"deliverable"`
	ResponseFormat     string      `json:"responseFormat"`
	Constraints        []string    `json:"constraints"`
}

type ExtractedSection struct {
	Title        string                       `json:"title"`
	Description  string                       `json:"description,omitempty"`
	LocationHint string                       `json:"locationHint,omitempty"`
	Questions    []ExtractedQuestionCandidate `json:"questions"`
}

type ExtractionResult struct {
	Sections []ExtractedSection `json:"sections"`
}

// MergedSection holds the questions of every chunk section sharing a title.
type MergedSection ExtractedSection

// QuestionDetails keeps the extracted attributes alongside the persisted row.
type QuestionDetails struct {
	Type               string      `json:"type,omitempty"`
	IsExplicitQuestion bool        `json:"is_explicit_question"`
	IsRequired         Requirement `json:"is_required"`
	Deliverable        string      `json:"deliverable,omitempty"`
	ResponseFormat     string      `json:"response_format,omitempty"`
	Constraints        []string    `json:"constraints,omitempty"`
}

// QuestionRecord is identified by (ProjectID, QuestionHash).
type QuestionRecord struct {
	ProjectID            string          `json:"project_id"`
	QuestionID           string          `json:"question_id"`
	OpportunityID        string          `json:"opportunity_id"`
	QuestionFileID       string          `json:"question_file_id"`
	SectionID            string          `json:"section_id"`
	SectionTitle         string          `json:"section_title"`
	SectionDescription   string          `json:"section_description"`
	QuestionOriginalText string          `json:"question_original_text"`
	QuestionNormalized   string          `json:"question_normalized"`
	QuestionHash         string          `json:"question_hash"`
	Details              QuestionDetails `json:"details"`
	Ctime                int64           `json:"ctime"`
	Mtime                int64           `json:"mtime"`
}
