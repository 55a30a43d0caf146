// Package kit reads and writes translation kit manifests. A kit is a
// directory holding the manifest, the original documents, their skeleton
// recordings and the XLIFF files sent to translation.
package kit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"kitmerge/internal/resource"
)

// ManifestFile is the name of the manifest at the kit root.
const ManifestFile = "manifest.yaml"

// Version is the manifest format version written by Save.
const Version = "2"

// ExtractionType tells which packaging produced a kit document.
type ExtractionType string

const (
	ExtractionNone      ExtractionType = "none"
	ExtractionXLIFF     ExtractionType = "xliff"
	ExtractionXLIFF2    ExtractionType = "xliff2"
	ExtractionPO        ExtractionType = "po"
	ExtractionRTF       ExtractionType = "rtf"
	ExtractionOmegaT    ExtractionType = "omegat"
	ExtractionTransifex ExtractionType = "transifex"
	ExtractionOntram    ExtractionType = "ontram"
	ExtractionTable     ExtractionType = "table"
)

// SkipEmptySource reports whether units with an empty source are left out
// of this packaging, so they never get a translated counterpart.
func (t ExtractionType) SkipEmptySource() bool {
	return t == ExtractionPO || t == ExtractionTransifex || t == ExtractionTable
}

// UseSource reports whether the translation is carried in the source of the kit units.
func (t ExtractionType) UseSource() bool {
	return t == ExtractionOntram
}

// MergingInfo describes how to merge one kit document back into its original.
type MergingInfo struct {
	DocID              int            `yaml:"docId"`
	ExtractionType     ExtractionType `yaml:"extractionType"`
	RelativeInputPath  string         `yaml:"relativeInputPath"`
	FilterID           string         `yaml:"filterId"`
	FilterParameters   string         `yaml:"filterParameters,omitempty"`
	InputEncoding      string         `yaml:"inputEncoding"`
	RelativeTargetPath string         `yaml:"relativeTargetPath"`
	TargetEncoding     string         `yaml:"targetEncoding"`
	// UseSkeleton is set when a skeleton recording was made at extraction.
	UseSkeleton bool `yaml:"useSkeleton,omitempty"`
}

// Manifest is the description of a kit.
type Manifest struct {
	Version      string            `yaml:"version"`
	PackageID    string            `yaml:"packageId"`
	ProjectID    string            `yaml:"projectId,omitempty"`
	SourceLocale resource.LocaleID `yaml:"sourceLocale"`
	TargetLocale resource.LocaleID `yaml:"targetLocale"`
	Created      time.Time         `yaml:"created"`

	OriginalDir string `yaml:"originalDir"`
	SkeletonDir string `yaml:"skeletonDir"`
	WorkDir     string `yaml:"workDir"`
	MergeDir    string `yaml:"mergeDir"`

	UseApprovedOnly    bool `yaml:"useApprovedOnly"`
	UpdateApprovedFlag bool `yaml:"updateApprovedFlag"`

	Docs []MergingInfo `yaml:"docs"`

	root string
}

// New creates a manifest for a kit rooted at root with the default layout.
func New(root string, src, trg resource.LocaleID) *Manifest {
	return &Manifest{
		Version:      Version,
		PackageID:    filepath.Base(root),
		SourceLocale: src,
		TargetLocale: trg,
		Created:      time.Now().UTC(),
		OriginalDir:  "original",
		SkeletonDir:  "skeleton",
		WorkDir:      "work",
		MergeDir:     "done",
		root:         root,
	}
}

// Load reads the manifest of the kit at root.
func Load(root string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.root = root
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", root, err)
	}
	return &m, nil
}

// Save writes the manifest at the kit root.
func (m *Manifest) Save() error {
	if err := os.MkdirAll(m.root, 0755); err != nil {
		return fmt.Errorf("create kit dir: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(m.root, ManifestFile), data, 0644)
}

func (m *Manifest) validate() error {
	src, err := NormalizeLocale(string(m.SourceLocale))
	if err != nil {
		return fmt.Errorf("source locale: %w", err)
	}
	trg, err := NormalizeLocale(string(m.TargetLocale))
	if err != nil {
		return fmt.Errorf("target locale: %w", err)
	}
	m.SourceLocale, m.TargetLocale = src, trg

	seen := make(map[int]bool)
	for i, d := range m.Docs {
		if d.RelativeInputPath == "" || d.FilterID == "" {
			return fmt.Errorf("document %d: input path and filter id are required", d.DocID)
		}
		if seen[d.DocID] {
			return fmt.Errorf("document %d: duplicate id", d.DocID)
		}
		seen[d.DocID] = true
		if d.RelativeTargetPath == "" {
			m.Docs[i].RelativeTargetPath = d.RelativeInputPath
		}
		if d.ExtractionType == "" {
			m.Docs[i].ExtractionType = ExtractionXLIFF
		}
	}
	return nil
}

// Root returns the kit directory.
func (m *Manifest) Root() string { return m.root }

// Item returns the document with the given id.
func (m *Manifest) Item(docID int) (MergingInfo, bool) {
	for _, d := range m.Docs {
		if d.DocID == docID {
			return d, true
		}
	}
	return MergingInfo{}, false
}

// Add appends a document and assigns its id.
func (m *Manifest) Add(info MergingInfo) MergingInfo {
	info.DocID = len(m.Docs) + 1
	m.Docs = append(m.Docs, info)
	return info
}

// OriginalDirectory is where the original documents are copied.
func (m *Manifest) OriginalDirectory() string { return filepath.Join(m.root, m.OriginalDir) }

// SkeletonDirectory is where skeleton recordings are stored.
func (m *Manifest) SkeletonDirectory() string { return filepath.Join(m.root, m.SkeletonDir) }

// WorkDirectory holds the XLIFF files sent to translation.
func (m *Manifest) WorkDirectory() string { return filepath.Join(m.root, m.WorkDir) }

// MergeDirectory is where merged documents are written.
func (m *Manifest) MergeDirectory() string { return filepath.Join(m.root, m.MergeDir) }

// OriginalPath returns the path of the copy of a document's original.
func (m *Manifest) OriginalPath(info MergingInfo) string {
	return filepath.Join(m.OriginalDirectory(), filepath.FromSlash(info.RelativeInputPath))
}

// WorkPath returns the path of a document's XLIFF file.
func (m *Manifest) WorkPath(info MergingInfo) string {
	return filepath.Join(m.WorkDirectory(), filepath.FromSlash(info.RelativeInputPath)+".xlf")
}

// NormalizeLocale returns the canonical BCP 47 form of a locale code.
// "fr_fr" becomes "fr-FR". An empty code stays empty.
func NormalizeLocale(code string) (resource.LocaleID, error) {
	if code == "" {
		return "", nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("locale %q: %w", code, err)
	}
	return resource.LocaleID(tag.String()), nil
}
