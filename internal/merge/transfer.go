package merge

import (
	"strings"

	"kitmerge/internal/resource"
	"kitmerge/internal/textutil"
)

const approvedYes = "yes"

// transfer returns the unit to write for a matched pair: a copy of ori
// carrying the translation of tra, or ori itself when the translation
// cannot be used.
func (mg *Merger) transfer(ori, tra *resource.Unit) *resource.Unit {
	log := mg.log.With().Str("id", tra.ID).Logger()

	var trgTra *resource.Container
	if mg.useSource {
		trgTra = tra.Source
	} else {
		trgTra = tra.Target(mg.trgLoc)
	}
	if trgTra == nil {
		if ori.Source.HasText(false) {
			mg.warningCount++
			log.Warn().Str("text", textutil.Truncate(ori.Source.Text(), 40)).Msg("No translation found, using source instead")
		}
		return ori
	}

	approved, hasApproved := trgTra.Property(resource.PropertyApproved)
	if approved != approvedYes && mg.manifest.UseApprovedOnly {
		mg.warningCount++
		log.Warn().Msg("Target is not approved, using source instead")
		return ori
	}

	merged := ori.Clone()
	srcOri := merged.Source
	trgTra = trgTra.Clone()

	var srcRanges, trgRanges []resource.Range
	if !srcOri.ContentIsOneSegment() {
		srcRanges = srcOri.Ranges()
	}
	if mg.forceSegmentation {
		srcTra := tra.Source
		if srcOri.Joined().CodedText() != srcTra.Joined().CodedText() {
			mg.warningCount++
			log.Warn().Msg("Original source and source in the translated file are different, keeping the original segmentation")
		} else if !srcTra.ContentIsOneSegment() {
			srcRanges = srcTra.Ranges()
		}
	}
	srcOri.JoinAll()
	if !trgTra.ContentIsOneSegment() {
		trgRanges = trgTra.Ranges()
		trgTra.JoinAll()
	}

	trgFrag := trgTra.FirstContent()
	before := len(trgFrag.CodedText())
	res := transferCodes(srcOri.FirstContent(), trgFrag)
	for _, c := range res.extra {
		mg.warningCount++
		log.Warn().Int("code", c.ID).Msg("The extra target code does not have corresponding data")
	}
	trgRanges = shiftRanges(trgRanges, before, res.leading, res.trailing)

	if srcRanges != nil {
		if err := srcOri.Resegment(srcRanges, true); err != nil {
			mg.warningCount++
			log.Warn().Err(err).Msg("Cannot restore the source segmentation")
		}
	}
	if trgRanges != nil {
		if err := trgTra.Resegment(trgRanges, true); err != nil {
			mg.warningCount++
			log.Warn().Err(err).Msg("Cannot restore the target segmentation")
		}
	}

	if n := srcOri.SegmentCount(); trgTra.SegmentCount() > n {
		mg.warningCount++
		log.Warn().Int("source_segments", n).Int("target_segments", trgTra.SegmentCount()).
			Msg("Extra segments in the translation are not merged")
		trgTra.TruncateSegments(n)
	}

	merged.SetTarget(mg.trgLoc, trgTra)
	if mg.manifest.UpdateApprovedFlag {
		if !hasApproved {
			approved = approvedYes
		}
		trgTra.SetProperty(resource.PropertyApproved, approved)
	}
	return merged
}

type codeTransfer struct {
	// extra lists target codes with no original counterpart and no data.
	extra []*resource.Code
	// leading and trailing are the coded-text lengths of the missing
	// original codes put back at the start and at the end of the target.
	leading  int
	trailing int
}

// transferCodes gives each code of trg the attributes of the original code
// it stands for. Codes are matched by identity, never by their position in
// trg: same tag type and, in order of preference, same data, same type and
// id, same display text, same type, same id. Original codes missing from
// trg are added back.
func transferCodes(oriSrc, trg *resource.Fragment) codeTransfer {
	var res codeTransfer
	oriCodes := oriSrc.Codes()
	if len(oriCodes) == 0 && !trg.HasCode() {
		return res
	}

	used := make([]bool, len(oriCodes))
	find := func(tc *resource.Code, same func(oc *resource.Code) bool) int {
		for j, oc := range oriCodes {
			if !used[j] && oc.TagType == tc.TagType && same(oc) {
				return j
			}
		}
		return -1
	}

	for _, tc := range trg.Codes() {
		j := -1
		for _, same := range codeMatchers(tc) {
			if j = find(tc, same); j >= 0 {
				break
			}
		}
		if j < 0 {
			if !tc.HasData() {
				res.extra = append(res.extra, tc)
			}
			continue
		}
		used[j] = true
		oc := oriCodes[j]
		tc.ID = oc.ID
		tc.Type = oc.Type
		tc.Data = oc.Data
		tc.OuterData = oc.OuterData
		tc.DisplayText = oc.DisplayText
		tc.Copyable = oc.Copyable
		tc.Deletable = oc.Deletable
	}

	leading := resource.NewFragment("")
	before := len(trg.CodedText())
	for j, oc := range oriCodes {
		if used[j] {
			continue
		}
		if isLeadingCode(oriSrc, oc) {
			leading.AppendExisting(oc.Clone())
		} else {
			trg.AppendExisting(oc.Clone())
		}
	}
	res.trailing = len(trg.CodedText()) - before
	res.leading = len(leading.CodedText())
	trg.Insert(0, leading)
	return res
}

// codeMatchers lists the tests tried, in order, to find the original code of tc.
func codeMatchers(tc *resource.Code) []func(oc *resource.Code) bool {
	return []func(oc *resource.Code) bool{
		func(oc *resource.Code) bool { return tc.HasData() && oc.Data == tc.Data },
		func(oc *resource.Code) bool { return oc.Type == tc.Type && oc.ID == tc.ID },
		func(oc *resource.Code) bool { return tc.DisplayText != "" && oc.DisplayText == tc.DisplayText },
		func(oc *resource.Code) bool { return tc.Type != "" && oc.Type == tc.Type },
		func(oc *resource.Code) bool { return oc.ID == tc.ID },
	}
}

// isLeadingCode reports whether only codes and whitespace precede code in f.
func isLeadingCode(f *resource.Fragment, code *resource.Code) bool {
	leading, found := true, false
	f.Walk(func(text string, c *resource.Code) {
		if found || !leading {
			return
		}
		if c == code {
			found = true
			return
		}
		if c == nil && strings.TrimSpace(text) != "" {
			leading = false
		}
	})
	return found && leading
}

// shiftRanges adjusts target ranges taken over a content of length size
// after leading bytes were inserted at the start and trailing bytes
// appended at the end. The first range absorbs the leading insert and a
// range reaching the end absorbs the trailing one.
func shiftRanges(ranges []resource.Range, size, leading, trailing int) []resource.Range {
	if ranges == nil || (leading == 0 && trailing == 0) {
		return ranges
	}
	out := make([]resource.Range, len(ranges))
	for i, r := range ranges {
		reachesEnd := r.End == -1 || r.End == size
		if !(i == 0 && r.Start == 0) {
			r.Start += leading
		}
		if reachesEnd {
			r.End = -1
		} else {
			r.End += leading
		}
		out[i] = r
	}
	return out
}
