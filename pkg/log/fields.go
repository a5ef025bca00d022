package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Realtime
	FieldClientID    = "client_id"
	FieldBoardID     = "board_id"
	FieldElementID   = "element_id"
	FieldMessageType = "message_type"
	FieldInstanceID  = "instance_id"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
