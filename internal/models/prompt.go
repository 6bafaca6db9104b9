// ABOUTME: Prompt is the rendered result of one generation
// ABOUTME: Value type handed verbatim to image or chat backends
package models

// Prompt holds a rendered prompt string
type Prompt struct {
	Render string `json:"render"`
}

func (p Prompt) String() string {
	return p.Render
}
