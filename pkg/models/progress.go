package models

// Progress is the current/total counter pair for serial media. Total is nil
// when the length of the work is not known.
type Progress struct {
	Current uint32
	Total   *uint32
}

// Percent reports how far along the user is, as 100*current/total.
// It is undefined (ok=false) when total is unknown, and 0 when total is
// zero. Values above 100 are possible when current runs past total; that
// is deliberate and callers render it as-is.
func (p Progress) Percent() (float64, bool) {
	if p.Total == nil {
		return 0, false
	}
	if *p.Total == 0 {
		return 0, true
	}
	return float64(p.Current) / float64(*p.Total) * 100, true
}

// IsFinished reports whether the user has reached (or passed) a known total.
func (p Progress) IsFinished() bool {
	return p.Total != nil && *p.Total > 0 && p.Current >= *p.Total
}

// ForceComplete marks the progress finished. If total is unknown it is
// pinned to the current position first. Idempotent.
func (p *Progress) ForceComplete() {
	if p.Total == nil {
		t := p.Current
		p.Total = &t
	}
	p.Current = *p.Total
}
