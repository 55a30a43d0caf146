package resource

import "strings"

// ContentPlaceholder is how a content reference shows in a skeleton dump.
const ContentPlaceholder = "[#$$self$]"

// SkeletonPart is either verbatim text or a reference to the owner's content.
type SkeletonPart struct {
	Text    string `json:"text,omitempty"`
	Content bool   `json:"content,omitempty"`
}

// Skeleton is the non-translatable material around (or instead of) content.
type Skeleton struct {
	Parts []SkeletonPart `json:"parts"`
}

// NewSkeleton creates a skeleton holding text.
func NewSkeleton(text string) *Skeleton {
	s := &Skeleton{}
	s.Add(text)
	return s
}

// Add appends verbatim text.
func (s *Skeleton) Add(text string) {
	if text == "" {
		return
	}
	if n := len(s.Parts); n > 0 && !s.Parts[n-1].Content {
		s.Parts[n-1].Text += text
		return
	}
	s.Parts = append(s.Parts, SkeletonPart{Text: text})
}

// AddContentPlaceholder marks where the owner's content is rendered.
func (s *Skeleton) AddContentPlaceholder() {
	s.Parts = append(s.Parts, SkeletonPart{Content: true})
}

// IsEmpty reports whether the skeleton has no parts.
func (s *Skeleton) IsEmpty() bool {
	return s == nil || len(s.Parts) == 0
}

// Clone returns a copy of the skeleton.
func (s *Skeleton) Clone() *Skeleton {
	if s == nil {
		return nil
	}
	cp := &Skeleton{Parts: make([]SkeletonPart, len(s.Parts))}
	copy(cp.Parts, s.Parts)
	return cp
}

func (s *Skeleton) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range s.Parts {
		if p.Content {
			b.WriteString(ContentPlaceholder)
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
