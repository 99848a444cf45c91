package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// GradedResponse is pushed when a submission on the watched test finishes
// grading.
type GradedResponse struct {
	Event        Event  `json:"event"`
	SubmissionID string `json:"submission_id"`
	TestID       string `json:"test_id"`
	Score        int    `json:"score"`
	GradedAt     string `json:"graded_at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
