package resource

import "sort"

// LocaleID identifies a locale, normalized as a BCP 47 tag.
type LocaleID string

func (l LocaleID) String() string {
	return string(l)
}

// Unit is one translatable content item with a stable cross-stream id.
type Unit struct {
	ID           string
	Name         string
	Translatable bool
	MimeType     string
	Source       *Container
	// Annotations carries free-form metadata such as domain or notes.
	Annotations map[string]string
	Skeleton    *Skeleton

	targets map[LocaleID]*Container
}

// NewUnit creates a translatable unit with a single-segment source.
func NewUnit(id, source string) *Unit {
	return &Unit{
		ID:           id,
		Translatable: true,
		Source:       NewContainer(source),
	}
}

// Target returns the target container for loc, or nil.
func (u *Unit) Target(loc LocaleID) *Container {
	return u.targets[loc]
}

// HasTarget reports whether the unit has a target for loc.
func (u *Unit) HasTarget(loc LocaleID) bool {
	_, ok := u.targets[loc]
	return ok
}

// SetTarget sets or removes (when c is nil) the target for loc.
func (u *Unit) SetTarget(loc LocaleID, c *Container) {
	if c == nil {
		delete(u.targets, loc)
		return
	}
	if u.targets == nil {
		u.targets = make(map[LocaleID]*Container)
	}
	u.targets[loc] = c
}

// TargetLocales returns the locales that have a target, sorted.
func (u *Unit) TargetLocales() []LocaleID {
	locs := make([]LocaleID, 0, len(u.targets))
	for loc := range u.targets {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
	return locs
}

// IsEmpty reports whether the source holds no content at all.
func (u *Unit) IsEmpty() bool {
	return u.Source == nil || u.Source.IsEmpty()
}

// Annotation returns the value of a named annotation.
func (u *Unit) Annotation(name string) string {
	return u.Annotations[name]
}

// Clone returns a deep copy of the unit.
func (u *Unit) Clone() *Unit {
	cp := &Unit{
		ID:           u.ID,
		Name:         u.Name,
		Translatable: u.Translatable,
		MimeType:     u.MimeType,
	}
	if u.Source != nil {
		cp.Source = u.Source.Clone()
	}
	if u.Skeleton != nil {
		cp.Skeleton = u.Skeleton.Clone()
	}
	if u.Annotations != nil {
		cp.Annotations = make(map[string]string, len(u.Annotations))
		for k, v := range u.Annotations {
			cp.Annotations[k] = v
		}
	}
	for loc, t := range u.targets {
		cp.SetTarget(loc, t.Clone())
	}
	return cp
}
