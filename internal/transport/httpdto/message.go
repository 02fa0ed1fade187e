package httpdto

// SendMessageRequest is the REST ingest body; the WebSocket path carries the
// same fields in its send-message payload.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
