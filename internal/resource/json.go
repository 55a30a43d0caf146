package resource

import (
	"encoding/json"
	"fmt"
)

type codeJSON struct {
	ID          int     `json:"id"`
	TagType     TagType `json:"tagType"`
	Type        string  `json:"type,omitempty"`
	Data        string  `json:"data,omitempty"`
	OuterData   string  `json:"outerData,omitempty"`
	DisplayText string  `json:"displayText,omitempty"`
	Copyable    bool    `json:"copyable"`
	Deletable   bool    `json:"deletable"`
}

type fragmentJSON struct {
	Text  string      `json:"text"`
	Codes []*codeJSON `json:"codes,omitempty"`
}

type partJSON struct {
	ID      string    `json:"id,omitempty"`
	Segment bool      `json:"segment,omitempty"`
	Content *Fragment `json:"content"`
}

type containerJSON struct {
	Parts []partJSON        `json:"parts"`
	Props map[string]string `json:"props,omitempty"`
}

type unitJSON struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name,omitempty"`
	Translatable bool                    `json:"translatable"`
	MimeType     string                  `json:"mimeType,omitempty"`
	Source       *Container              `json:"source,omitempty"`
	Targets      map[LocaleID]*Container `json:"targets,omitempty"`
	Annotations  map[string]string       `json:"annotations,omitempty"`
	Skeleton     *Skeleton               `json:"skeleton,omitempty"`
}

type eventJSON struct {
	Type     string          `json:"type"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

func (f *Fragment) MarshalJSON() ([]byte, error) {
	out := fragmentJSON{Text: f.text}
	for _, c := range f.codes {
		out.Codes = append(out.Codes, &codeJSON{
			ID: c.ID, TagType: c.TagType, Type: c.Type, Data: c.Data, OuterData: c.OuterData,
			DisplayText: c.DisplayText, Copyable: c.Copyable, Deletable: c.Deletable,
		})
	}
	return json.Marshal(out)
}

func (f *Fragment) UnmarshalJSON(data []byte) error {
	var in fragmentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	f.text = in.Text
	f.codes = nil
	for _, c := range in.Codes {
		f.codes = append(f.codes, &Code{
			ID: c.ID, TagType: c.TagType, Type: c.Type, Data: c.Data, OuterData: c.OuterData,
			DisplayText: c.DisplayText, Copyable: c.Copyable, Deletable: c.Deletable,
		})
	}
	return nil
}

func (c *Container) MarshalJSON() ([]byte, error) {
	out := containerJSON{Parts: make([]partJSON, 0, len(c.parts)), Props: c.props}
	for _, p := range c.parts {
		out.Parts = append(out.Parts, partJSON{ID: p.ID, Segment: p.Segment, Content: p.Content})
	}
	return json.Marshal(out)
}

func (c *Container) UnmarshalJSON(data []byte) error {
	var in containerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.parts = nil
	c.props = in.Props
	for _, p := range in.Parts {
		content := p.Content
		if content == nil {
			content = NewFragment("")
		}
		c.parts = append(c.parts, &Part{ID: p.ID, Segment: p.Segment, Content: content})
	}
	return nil
}

func (u *Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(unitJSON{
		ID:           u.ID,
		Name:         u.Name,
		Translatable: u.Translatable,
		MimeType:     u.MimeType,
		Source:       u.Source,
		Targets:      u.targets,
		Annotations:  u.Annotations,
		Skeleton:     u.Skeleton,
	})
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	var in unitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*u = Unit{
		ID:           in.ID,
		Name:         in.Name,
		Translatable: in.Translatable,
		MimeType:     in.MimeType,
		Source:       in.Source,
		Annotations:  in.Annotations,
		Skeleton:     in.Skeleton,
		targets:      in.Targets,
	}
	if u.Source == nil {
		u.Source = NewContainer("")
	}
	return nil
}

func (e *Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{Type: e.Type.String()}
	if e.Resource != nil {
		raw, err := json.Marshal(e.Resource)
		if err != nil {
			return nil, fmt.Errorf("marshal %s resource: %w", e.Type, err)
		}
		out.Resource = raw
	}
	return json.Marshal(out)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t, ok := ParseEventType(in.Type)
	if !ok {
		return fmt.Errorf("unknown event type %q", in.Type)
	}

	var res any
	switch t {
	case EventStartDocument:
		res = &StartDocument{}
	case EventEndDocument, EventEndSubDocument, EventEndGroup:
		res = &Ending{}
	case EventStartSubDocument, EventStartGroup:
		res = &Group{}
	case EventTextUnit:
		res = &Unit{}
	case EventDocumentPart:
		res = &DocumentPart{}
	case EventHandoff:
		res = &Handoff{}
	}
	if res != nil && len(in.Resource) > 0 {
		if err := json.Unmarshal(in.Resource, res); err != nil {
			return fmt.Errorf("unmarshal %s resource: %w", t, err)
		}
	}
	e.Type = t
	e.Resource = res
	return nil
}
