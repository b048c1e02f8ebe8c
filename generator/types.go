package generator

import "time"

// Spec describes the app the user asked for.
type Spec struct {
	Description string
	// NeedsLLM adds the gateway integration block to the prompt.
	NeedsLLM bool
}

// Document is an accepted, validated HTML page.
type Document struct {
	HTML      string    `json:"html"`
	Title     string    `json:"title,omitempty"`
	Version   uint64    `json:"version"`
	Op        Op        `json:"op"`
	CreatedAt time.Time `json:"created_at"`
}

// Empty reports whether no document has been accepted yet.
func (d Document) Empty() bool { return d.HTML == "" }

// Turn records one accepted run.
type Turn struct {
	Op Op `json:"op"`
	// Input is the app description or the human feedback.
	Input     string    `json:"input"`
	Version   uint64    `json:"version"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
