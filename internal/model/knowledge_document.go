package model

type KnowledgeDocument struct {
	ID              string `json:"id"`
	OrgID           string `json:"org_id"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	Name            string `json:"name"`
	Indexed         bool   `json:"indexed"`
	Ctime           int64  `json:"ctime"`
	Mtime           int64  `json:"mtime"`
}
