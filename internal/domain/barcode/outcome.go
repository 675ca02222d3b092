package barcode

// OutcomeKind tags a handler outcome as a match or an error
type OutcomeKind string

const (
	OutcomeMatch OutcomeKind = "match"
	OutcomeError OutcomeKind = "error"
)

// Outcome is what a handler reports for a payload it recognized
type Outcome struct {
	Kind OutcomeKind
	// Fields describe what was found, e.g. {"stockitem": {"pk": 7}}
	Fields map[string]any
	// Message is the human-readable error for error outcomes
	Message string
}

// Match creates a successful outcome with the given fields
func Match(fields map[string]any) *Outcome {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Outcome{
		Kind:   OutcomeMatch,
		Fields: fields,
	}
}

// Failure creates an error outcome. Extra fields are optional context.
func Failure(message string, fields map[string]any) *Outcome {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Outcome{
		Kind:    OutcomeError,
		Fields:  fields,
		Message: message,
	}
}

// IsMatch reports whether the outcome is a successful match
func (o *Outcome) IsMatch() bool {
	return o != nil && o.Kind == OutcomeMatch
}

// EntityRef builds the {"pk": id} reference used in outcome fields
func EntityRef(pk uint64) map[string]any {
	return map[string]any{"pk": pk}
}

// ResultStatus tags the final result of a resolution pass
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// ResolvedScan is the single result of a resolution pass
type ResolvedScan struct {
	Status ResultStatus
	// Plugin is the name of the handler that produced the outcome,
	// empty when no handler recognized the payload
	Plugin      string
	BarcodeData string
	BarcodeHash Hash
	Outcome     *Outcome
}

// Succeeded reports whether the scan resolved to a match
func (r *ResolvedScan) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// Fields returns the outcome fields, never nil
func (r *ResolvedScan) Fields() map[string]any {
	if r == nil || r.Outcome == nil || r.Outcome.Fields == nil {
		return map[string]any{}
	}
	return r.Outcome.Fields
}
