package filter

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitmerge/internal/resource"
)

type stubFilter struct{ EventQueue }

func (*stubFilter) ID() string { return "stub" }
func (*stubFilter) MimeType() string { return resource.MimeText }
func (*stubFilter) Extensions() []string { return []string{".stub"} }
func (*stubFilter) Open(context.Context, Input) error { return nil }
func (*stubFilter) Close() error { return nil }
func (*stubFilter) CreateWriter() Writer { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func() Filter { return &stubFilter{} })

	f, err := r.Create("stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", f.ID())

	id, ok := r.ForExtension(".STUB")
	assert.True(t, ok)
	assert.Equal(t, "stub", id)
	assert.Equal(t, []string{"stub"}, r.IDs())

	_, err = r.Create("okf_nope")
	assert.True(t, errors.Is(err, ErrUnknownFilter))
}

func TestSplitLinesKeepsTerminators(t *testing.T) {
	text := "a\r\nb\n\nc\rd"
	lines := SplitLines(text)
	require.Len(t, lines, 5)
	assert.Equal(t, Line{Content: "a", Break: "\r\n"}, lines[0])
	assert.Equal(t, Line{Content: "", Break: "\n"}, lines[2])
	assert.Equal(t, Line{Content: "d"}, lines[4])

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Content + l.Break)
	}
	assert.Equal(t, text, b.String())
	assert.Equal(t, "\r\n", DetectLineBreak(text))
	assert.Equal(t, "\n", DetectLineBreak("single"))
}

func TestSplitSpace(t *testing.T) {
	lead, body, trail := SplitSpace("  hello world \t")
	assert.Equal(t, "  ", lead)
	assert.Equal(t, "hello world", body)
	assert.Equal(t, " \t", trail)
}

func TestParseParams(t *testing.T) {
	p := ParseParams("tags=true; header = yes ;bad;=x;sep=\t")
	assert.True(t, p.Bool("tags", false))
	assert.False(t, p.Bool("header", false), "yes is not a Go boolean")
	assert.True(t, p.Bool("missing", true))
	assert.Equal(t, "", p.String("sep", ","))
	assert.Equal(t, ",", p.String("other", ","))
	assert.Len(t, p, 3)
}

func TestBuilder(t *testing.T) {
	var q EventQueue
	b := NewBuilder(&q, &resource.StartDocument{ID: "sd"})
	b.AddSkeleton("[s]\n")
	b.AddSkeleton("; c\n")
	b.AddUnit(resource.NewUnit("", "v"), "k=", "\n")
	b.AddUnit(resource.NewUnit("", "w"), "l=", "\n")
	b.End()

	var types []resource.EventType
	var units []*resource.Unit
	for {
		ev, err := q.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		types = append(types, ev.Type)
		if u := ev.Unit(); u != nil {
			units = append(units, u)
		}
	}
	assert.Equal(t, []resource.EventType{
		resource.EventStartDocument,
		resource.EventDocumentPart,
		resource.EventTextUnit,
		resource.EventTextUnit,
		resource.EventEndDocument,
	}, types)
	require.Len(t, units, 2)
	assert.Equal(t, "1", units[0].ID)
	assert.Equal(t, "2", units[1].ID)
	assert.Equal(t, "k=[#$$self$]\n", units[0].Skeleton.String())
}
