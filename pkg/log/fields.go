package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches internal/middleware context keys)
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Realtime
	FieldClientID       = "client_id"
	FieldRoom           = "room"
	FieldEvent          = "event"
	FieldConversationID = "conversation_id"
	FieldMessageID      = "message_id"
)
