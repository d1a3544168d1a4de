package a2a

// Agent type names used as both registry keys and workflow step names.
const (
	AgentImport         = "import"
	AgentValidation     = "validation"
	AgentEnrichment     = "enrichment"
	AgentCategorization = "categorization"
	AgentEmbedding      = "embedding"
)

// Named workflows: the ordered sequence of agent types composing a task.
// Operators may register additional workflows at startup; quick_import and
// full_import are the two built in by default.
var (
	WorkflowQuickImport = []string{AgentImport, AgentValidation}
	WorkflowFullImport  = []string{
		AgentImport,
		AgentValidation,
		AgentEnrichment,
		AgentCategorization,
		AgentEmbedding,
	}
)

const (
	WorkflowTypeQuickImport = "quick_import"
	WorkflowTypeFullImport  = "full_import"
)

// DefaultWorkflows maps workflow_type to its agent sequence.
func DefaultWorkflows() map[string][]string {
	return map[string][]string{
		WorkflowTypeQuickImport: append([]string(nil), WorkflowQuickImport...),
		WorkflowTypeFullImport:  append([]string(nil), WorkflowFullImport...),
	}
}

// DefaultCategoryTaxonomy is the fixed 11-name default category set
// (Glossary).
var DefaultCategoryTaxonomy = []string{
	"Development",
	"AI/ML",
	"Technology",
	"Business",
	"Education",
	"News",
	"Entertainment",
	"Reference",
	"Tools",
	"Personal",
	"Other",
}
