package resource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventJSON_UnitSurvivesRecording(t *testing.T) {
	u := NewUnit("42", "")
	u.Name = "menu/open"
	src := NewFragment("Open ")
	src.AppendCode(TagOpening, "b", "<b>")
	src.Append("file")
	src.AppendCode(TagClosing, "b", "</b>")
	u.Source = NewContainerFromFragment(src)
	trg := NewContainer("Ouvrir")
	trg.SetProperty(PropertyApproved, "yes")
	u.SetTarget("fr-FR", trg)
	u.Skeleton = NewSkeleton("open=")
	u.Skeleton.AddContentPlaceholder()
	u.Skeleton.Add("\n")

	raw, err := json.Marshal(NewUnitEvent(u))
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	require.Equal(t, EventTextUnit, ev.Type)

	got := ev.Unit()
	require.NotNil(t, got)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "menu/open", got.Name)
	assert.True(t, got.Translatable)
	assert.Equal(t, "Open <b>file</b>", got.Source.Text())
	assert.Equal(t, src.CodedText(), got.Source.FirstContent().CodedText())
	assert.Equal(t, "open=[#$$self$]\n", got.Skeleton.String())

	gotTrg := got.Target("fr-FR")
	require.NotNil(t, gotTrg)
	approved, _ := gotTrg.Property(PropertyApproved)
	assert.Equal(t, "yes", approved)
}

func TestEventJSON_EndingAndUnknownType(t *testing.T) {
	raw, err := json.Marshal(NewEndingEvent(EventEndSubDocument, &Ending{ID: "f1"}))
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, EventEndSubDocument, ev.Type)
	assert.Equal(t, "f1", ev.Ending().ID)

	err = json.Unmarshal([]byte(`{"type":"bogus"}`), &ev)
	assert.Error(t, err)
}
