package xliff

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"kitmerge/internal/charset"
	"kitmerge/internal/filter"
	"kitmerge/internal/resource"
)

// Filter reads XLIFF 1.2 documents. Each <file> is a sub-document.
type Filter struct {
	filter.EventQueue
}

func NewFilter() *Filter { return &Filter{} }

func (f *Filter) ID() string { return ID }

func (f *Filter) MimeType() string { return resource.MimeXLIFF }

func (f *Filter) Extensions() []string { return []string{".xlf", ".xliff"} }

func (f *Filter) CreateWriter() filter.Writer { return NewWriter() }

func (f *Filter) Close() error {
	f.Reset()
	return nil
}

// Open parses the document. The encoding comes from the XML declaration.
// Parameters: segmentedOutput=true makes the writer always segment targets.
func (f *Filter) Open(ctx context.Context, in filter.Input) error {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := charset.Lookup(label)
		if err != nil {
			return nil, err
		}
		return enc.NewDecoder().Reader(input), nil
	}
	if err := doc.ReadFromFile(in.Path); err != nil {
		return fmt.Errorf("open xliff file: %w", err)
	}
	root := doc.SelectElement("xliff")
	if root == nil {
		return fmt.Errorf("open xliff file %s: missing <xliff> root", in.Path)
	}
	f.Reset()

	files := root.SelectElements("file")
	sd := filter.NewStartDocument(f, in, "")
	sd.LineBreak = "\n"
	sd.Multilingual = true
	sd.SegmentedOutput = filter.ParseParams(in.Params).Bool("segmentedOutput", false)
	if sd.Locale == "" && len(files) > 0 {
		sd.Locale = resource.LocaleID(files[0].SelectAttrValue("source-language", ""))
	}
	f.Push(resource.NewStartDocumentEvent(sd))

	for i, file := range files {
		trgLoc := in.TargetLocale
		if trgLoc == "" {
			trgLoc = resource.LocaleID(file.SelectAttrValue("target-language", ""))
		}
		id := "f" + strconv.Itoa(i+1)
		f.Push(resource.NewGroupEvent(resource.EventStartSubDocument, &resource.Group{
			ID:   id,
			Name: file.SelectAttrValue("original", ""),
		}))
		if body := file.SelectElement("body"); body != nil {
			f.readBody(body, trgLoc)
		}
		f.Push(resource.NewEndingEvent(resource.EventEndSubDocument, &resource.Ending{ID: id}))
	}
	f.Push(resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"}))
	return nil
}

func (f *Filter) readBody(e *etree.Element, trgLoc resource.LocaleID) {
	for _, child := range e.ChildElements() {
		switch child.Tag {
		case "group":
			g := &resource.Group{
				ID:   child.SelectAttrValue("id", ""),
				Name: child.SelectAttrValue("resname", ""),
			}
			f.Push(resource.NewGroupEvent(resource.EventStartGroup, g))
			f.readBody(child, trgLoc)
			f.Push(resource.NewEndingEvent(resource.EventEndGroup, &resource.Ending{ID: g.ID}))
		case "trans-unit":
			f.Push(resource.NewUnitEvent(readUnit(child, trgLoc)))
		}
	}
}

func readUnit(e *etree.Element, trgLoc resource.LocaleID) *resource.Unit {
	u := &resource.Unit{
		ID:           e.SelectAttrValue("id", ""),
		Name:         e.SelectAttrValue("resname", ""),
		Translatable: e.SelectAttrValue("translate", "yes") != "no",
		MimeType:     resource.MimeXLIFF,
	}

	switch {
	case e.SelectElement("seg-source") != nil:
		u.Source = readContainer(e.SelectElement("seg-source"))
	case e.SelectElement("source") != nil:
		u.Source = readContainer(e.SelectElement("source"))
	default:
		u.Source = resource.NewContainer("")
	}

	approved := e.SelectAttr("approved")
	if t := e.SelectElement("target"); t != nil {
		trg := readContainer(t)
		if approved != nil {
			trg.SetProperty(resource.PropertyApproved, approved.Value)
		}
		u.SetTarget(trgLoc, trg)
	}
	if approved != nil {
		u.Source.SetProperty(resource.PropertyApproved, approved.Value)
	}

	for _, note := range e.SelectElements("note") {
		if u.Annotations == nil {
			u.Annotations = make(map[string]string)
		}
		u.Annotations[note.SelectAttrValue("from", "note")] = note.Text()
	}
	return u
}
