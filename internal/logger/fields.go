package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Context-level fields, carried through the call chain.
const (
	FieldRequestID = "request_id"
	FieldVideoID   = "video_id"
	FieldOperation = "operation"
	FieldComponent = "component"
	FieldStore     = "store"
)

// Entry-level metric fields.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldStatus     = "status"
	FieldStep       = "step"
)
