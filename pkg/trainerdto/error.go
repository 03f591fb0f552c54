package trainerdto

// Error codes carried by DomainError.
const (
	CodeBadRequest        = "bad_request"
	CodeValidation        = "validation"
	CodeIllegalMove       = "illegal_move"
	CodeAmbiguousMove     = "ambiguous_move"
	CodePGNSyntax         = "pgn_syntax"
	CodeNotFound          = "not_found"
	CodeEngineUnavailable = "engine_unavailable"
	CodeInternal          = "internal"
)

type DomainError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable,omitempty"`
	Ply       int               `json:"ply,omitempty"`
	Path      []int             `json:"path,omitempty"`
	Details   []ValidationIssue `json:"details,omitempty"`
}

// ValidationIssue is one limit violation. Chapter is zero-based and omitted
// for lesson-level fields.
type ValidationIssue struct {
	Field   string `json:"field"`
	Chapter *int   `json:"chapter,omitempty"`
	Limit   int    `json:"limit"`
	Excess  int    `json:"excess"`
	Message string `json:"message"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "trainer service error"
}

type ErrorResponse struct {
	Error DomainError `json:"error"`
}
