package domain

import "time"

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in the displayed conversation
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	Kind      Kind      `json:"kind,omitempty"` // set when the content is a failure message
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	HTML      string `json:"html,omitempty"`
	Kind      Kind   `json:"kind,omitempty"`
	Turns     []Turn `json:"turns"`
}

// Commentary is the narrative assessment returned by the commentary requester
type Commentary struct {
	Text string `json:"text"`
	HTML string `json:"html,omitempty"`
	Kind Kind   `json:"kind,omitempty"`
}

// OK reports whether the commentary is a model answer rather than a failure message
func (c Commentary) OK() bool {
	return c.Kind == ""
}

// Session is one conversation bound to a grounding document
type Session struct {
	ID             string    `json:"id"`
	DocumentDigest string    `json:"document_digest"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
