// ABOUTME: Chunk represents an atomic prompt fragment with optional ordering keys
// ABOUTME: Defines the emission order used by the prompt composer
package models

// Chunk is a fragment of prompt text. Pos groups chunks into comma separated
// clauses, SubPos orders chunks inside one clause.
type Chunk struct {
	Text   string `yaml:"prompt" json:"prompt"`
	Pos    *int   `yaml:"pos,omitempty" json:"pos,omitempty"`
	SubPos *int   `yaml:"sub_pos,omitempty" json:"sub_pos,omitempty"`
}

// NewChunk creates a chunk with an explicit position
func NewChunk(text string, pos int) Chunk {
	return Chunk{Text: text, Pos: IntPtr(pos)}
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// Group returns the clause key of the chunk, a missing Pos counts as 0
func (c Chunk) Group() int {
	if c.Pos == nil {
		return 0
	}
	return *c.Pos
}

// Equal reports whether two chunks share the same Pos.
// Text and SubPos are not part of chunk identity.
func (c Chunk) Equal(other Chunk) bool {
	if c.Pos == nil || other.Pos == nil {
		return c.Pos == nil && other.Pos == nil
	}
	return *c.Pos == *other.Pos
}

// Clone returns a copy that shares no pointers with c
func (c Chunk) Clone() Chunk {
	out := Chunk{Text: c.Text}
	if c.Pos != nil {
		out.Pos = IntPtr(*c.Pos)
	}
	if c.SubPos != nil {
		out.SubPos = IntPtr(*c.SubPos)
	}
	return out
}

// CompareChunks orders chunks for emission. It returns a negative number when
// a is emitted before b, a positive number when b comes first and 0 when the
// two are interchangeable.
//
// Larger Group values come first. Within a group a chunk without SubPos comes
// before any chunk that has one, and smaller SubPos values come first.
func CompareChunks(a, b Chunk) int {
	ga, gb := a.Group(), b.Group()
	if ga != gb {
		if ga > gb {
			return -1
		}
		return 1
	}

	switch {
	case a.SubPos == nil && b.SubPos == nil:
		return 0
	case a.SubPos == nil:
		return -1
	case b.SubPos == nil:
		return 1
	case *a.SubPos < *b.SubPos:
		return -1
	case *a.SubPos > *b.SubPos:
		return 1
	}
	return 0
}
