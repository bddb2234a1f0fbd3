package types

// SemanticType classifies a transcript message by what it contributes.
type SemanticType string

const (
	SemanticIntent         SemanticType = "intent"
	SemanticPlan           SemanticType = "plan"
	SemanticImplementation SemanticType = "implementation"
	SemanticResult         SemanticType = "result"
	SemanticDecision       SemanticType = "decision"
	SemanticQuestion       SemanticType = "question"
	SemanticContext        SemanticType = "context"
)

// FileAction is what happened to a file during a session.
type FileAction string

const (
	FileCreated  FileAction = "created"
	FileModified FileAction = "modified"
	FileDeleted  FileAction = "deleted"
	FileRead     FileAction = "read"
)

// FileChangeRecord aggregates every mention of one path.
type FileChangeRecord struct {
	Path        string     `json:"path"`
	Action      FileAction `json:"action"`
	Description string     `json:"description"`
	Mentions    int        `json:"mentions"`
}

// Decision pairs a question with the choice that answered it.
type Decision struct {
	Question string `json:"question"`
	Choice   string `json:"choice"`
	Context  string `json:"context"`
}

// Summary is the semantic digest of one session.
type Summary struct {
	Task           string             `json:"task"`
	Solution       string             `json:"solution"`
	FilesCreated   []FileChangeRecord `json:"files_created"`
	FilesModified  []FileChangeRecord `json:"files_modified"`
	Decisions      []Decision         `json:"decisions"`
	Outcomes       []string           `json:"outcomes"`
	TriggerPhrases []string           `json:"trigger_phrases"`
	MessageTypes   []SemanticType     `json:"message_types,omitempty"`
}
