package xliff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/beevik/etree"

	"kitmerge/internal/charset"
	"kitmerge/internal/resource"
)

// Writer builds an XLIFF document from an event stream. Translatable and
// non-translatable units are both written so kit and original stay aligned.
// Document parts carry no content and are left out.
type Writer struct {
	locale   resource.LocaleID
	encoding string
	path     string

	// Original overrides the original attribute of implicit <file> elements.
	Original string

	doc   *etree.Document
	root  *etree.Element
	file  *etree.Element
	stack []*etree.Element
	sd    *resource.StartDocument
	files int
	done  bool
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) SetOptions(locale resource.LocaleID, encoding string) {
	w.locale = locale
	w.encoding = encoding
}

func (w *Writer) SetOutput(path string) {
	w.path = path
}

// Document returns the document built so far.
func (w *Writer) Document() *etree.Document {
	return w.doc
}

func (w *Writer) HandleEvent(ev *resource.Event) error {
	switch ev.Type {
	case resource.EventStartDocument:
		w.startDocument(ev.StartDocument())
	case resource.EventStartSubDocument:
		name := ""
		if g := ev.Group(); g != nil {
			name = g.Name
		}
		w.startFile(name)
	case resource.EventEndSubDocument:
		w.file, w.stack = nil, nil
	case resource.EventStartGroup:
		w.startGroup(ev.Group())
	case resource.EventEndGroup:
		if len(w.stack) > 1 {
			w.stack = w.stack[:len(w.stack)-1]
		}
	case resource.EventTextUnit:
		if u := ev.Unit(); u != nil {
			w.writeUnit(u)
		}
	case resource.EventEndDocument:
		return w.commit()
	}
	return nil
}

// Close drops an unfinished document. It is safe to call more than once.
func (w *Writer) Close() error {
	w.doc, w.root, w.file, w.stack = nil, nil, nil, nil
	return nil
}

func (w *Writer) startDocument(sd *resource.StartDocument) {
	if sd == nil {
		sd = &resource.StartDocument{ID: "sd"}
	}
	w.sd = sd
	w.doc = etree.NewDocument()
	w.doc.CreateProcInst("xml", fmt.Sprintf(`version="1.0" encoding="%s"`, w.outputEncoding()))
	w.root = w.doc.CreateElement("xliff")
	w.root.CreateAttr("version", version)
	w.root.CreateAttr("xmlns", namespace)
}

func (w *Writer) outputEncoding() string {
	if w.encoding == "" {
		return charset.UTF8
	}
	return charset.Canonical(w.encoding)
}

func (w *Writer) ensureFile() {
	if w.root == nil {
		w.startDocument(nil)
	}
	if w.file == nil {
		w.startFile("")
	}
}

func (w *Writer) startFile(original string) {
	if w.root == nil {
		w.startDocument(nil)
	}
	if original == "" {
		original = w.Original
	}
	if original == "" {
		original = w.sd.Name
	}
	w.files++
	w.file = w.root.CreateElement("file")
	w.file.CreateAttr("original", original)
	if w.sd.Locale != "" {
		w.file.CreateAttr("source-language", w.sd.Locale.String())
	}
	if w.locale != "" {
		w.file.CreateAttr("target-language", w.locale.String())
	}
	datatype := "plaintext"
	if w.sd.FilterID != "" && w.sd.FilterID != ID {
		datatype = "x-" + w.sd.FilterID
	} else if w.sd.FilterID == ID {
		datatype = "xml"
	}
	w.file.CreateAttr("datatype", datatype)
	w.stack = []*etree.Element{w.file.CreateElement("body")}
}

func (w *Writer) startGroup(g *resource.Group) {
	w.ensureFile()
	e := w.stack[len(w.stack)-1].CreateElement("group")
	if g != nil {
		e.CreateAttr("id", g.ID)
		if g.Name != "" {
			e.CreateAttr("resname", g.Name)
		}
	}
	w.stack = append(w.stack, e)
}

func (w *Writer) writeUnit(u *resource.Unit) {
	w.ensureFile()
	tu := w.stack[len(w.stack)-1].CreateElement("trans-unit")
	tu.CreateAttr("id", u.ID)
	if u.Name != "" {
		tu.CreateAttr("resname", u.Name)
	}
	if !u.Translatable {
		tu.CreateAttr("translate", "no")
	}

	trg := u.Target(w.locale)
	approved, ok := "", false
	if trg != nil {
		approved, ok = trg.Property(resource.PropertyApproved)
	} else {
		approved, ok = u.Source.Property(resource.PropertyApproved)
	}
	if ok {
		tu.CreateAttr("approved", approved)
	}

	writeContainer(tu.CreateElement("source"), u.Source, false)
	if !u.Source.ContentIsOneSegment() {
		writeContainer(tu.CreateElement("seg-source"), u.Source, true)
	}
	if trg != nil {
		t := tu.CreateElement("target")
		if w.locale != "" {
			t.CreateAttr("xml:lang", w.locale.String())
		}
		segmented := !trg.ContentIsOneSegment() || w.sd.SegmentedOutput
		writeContainer(t, trg, segmented)
	}
	for _, key := range sortedKeys(u.Annotations) {
		note := tu.CreateElement("note")
		note.CreateAttr("from", key)
		note.SetText(u.Annotations[key])
	}
}

func (w *Writer) commit() error {
	if w.done {
		return nil
	}
	if w.doc == nil {
		w.startDocument(nil)
	}
	if w.files == 0 {
		w.ensureFile()
	}
	if w.path == "" {
		return errors.New("xliff writer: no output set")
	}
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	tmp := f.Name()

	enc, err := charset.NewWriter(f, w.encoding)
	if err == nil {
		_, err = w.doc.WriteTo(enc)
		err = errors.Join(err, enc.Close())
	}
	err = errors.Join(err, f.Close())
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write xliff: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move output into place: %w", err)
	}
	w.done = true
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
