package coach

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/vita/pkg/metrics"
)

// Role is the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one persisted chat turn. History is append-only per user.
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is a transcript entry sent by the client.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the client transcript; the last turn is the new user
// message. AssessmentData is accepted for compatibility and ignored.
type ChatRequest struct {
	Messages       []Turn          `json:"messages" binding:"required"`
	AssessmentData json.RawMessage `json:"assessmentData,omitempty"`
}

// StreamChunk is one frame of a streamed reply.
type StreamChunk struct {
	Delta string              `json:"delta,omitempty"`
	Done  bool                `json:"done,omitempty"`
	Error string              `json:"error,omitempty"`
	Usage *metrics.TokenUsage `json:"usage,omitempty"`
}

// Config tunes the coaching session.
type Config struct {
	Model            string
	Temperature      float32
	SystemPrompt     string
	MaxContextTokens int
	HistoryLimit     int
	PersistTimeout   time.Duration
}
