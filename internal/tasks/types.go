package tasks

type AnalyzeRequest struct {
	TaskText string `json:"task_text"`
}

type SuggestRequest struct {
	PartialTask string `json:"partial_task"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const (
	msgInvalidJSON      = "Invalid JSON body"
	detailsInvalidJSON  = "request body must be a single JSON object"
	msgMissingTaskText  = "Missing task_text"
	msgMissingPartial   = "Missing partial_task"
	msgInvalidStructure = "AI returned invalid structure."
	msgAnalyzeFailed    = "Internal Server Error during AI analysis."
	msgSuggestFailed    = "Internal Server Error during suggestion generation."
	msgMethodNotAllowed = "Method not allowed"
)

// Outcome labels used in metrics and analytics.
const (
	outcomeOK               = "ok"
	outcomeBadRequest       = "bad_request"
	outcomeMethodNotAllowed = "method_not_allowed"
	outcomeInvalidOutput    = "invalid_output"
	outcomeTransportError   = "transport_error"
)

const (
	endpointAnalyze = "analyze"
	endpointSuggest = "suggest"
)
