package model

const (
	QuestionFileStatusProcessing = "PROCESSING"
	QuestionFileStatusProcessed  = "PROCESSED"
	QuestionFileStatusFailed     = "FAILED"
)

type QuestionFile struct {
	ID              string `json:"id"`
	ProjectID       string `json:"project_id"`
	OpportunityID   string `json:"opportunity_id"`
	Status          string `json:"status"`
	CancelRequested bool   `json:"cancel_requested"`
	TotalQuestions  int    `json:"total_questions"`
	ErrorMessage    string `json:"error_message"`
	Ctime           int64  `json:"ctime"`
	Mtime           int64  `json:"mtime"`
}
