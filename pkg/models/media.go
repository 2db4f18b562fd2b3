package models

import (
	"sort"

	"github.com/google/uuid"
)

// KindTag discriminates the three media variants.
type KindTag string

const (
	KindMovie    KindTag = "movie"
	KindSeries   KindTag = "series"
	KindReadable KindTag = "readable"
)

// MediaKind is a tagged union: exactly one variant is active per item, and
// only the payload of that variant is meaningful. Construct it through
// NewMovie / NewSeries / NewReadable so the tag and payload cannot disagree.
type MediaKind struct {
	tag      KindTag
	readable ReadableKind
	progress Progress
	watch    WatchStatus
	read     ReadStatus
}

func NewMovie(status WatchStatus) MediaKind {
	return MediaKind{tag: KindMovie, watch: status}
}

func NewSeries(progress Progress, status WatchStatus) MediaKind {
	return MediaKind{tag: KindSeries, progress: progress, watch: status}
}

func NewReadable(kind ReadableKind, progress Progress, status ReadStatus) MediaKind {
	return MediaKind{tag: KindReadable, readable: kind, progress: progress, read: status}
}

func (k MediaKind) Tag() KindTag { return k.tag }

// Progress returns the embedded counters. Movies have none.
func (k MediaKind) Progress() (Progress, bool) {
	if k.tag == KindMovie {
		return Progress{}, false
	}
	return k.progress, true
}

// WatchStatus is set for movies and series only.
func (k MediaKind) WatchStatus() (WatchStatus, bool) {
	if k.tag == KindReadable {
		return "", false
	}
	return k.watch, true
}

// ReadStatus is set for readables only.
func (k MediaKind) ReadStatus() (ReadStatus, bool) {
	if k.tag != KindReadable {
		return "", false
	}
	return k.read, true
}

// Readable returns the sub-kind for readables.
func (k MediaKind) Readable() (ReadableKind, bool) {
	if k.tag != KindReadable {
		return "", false
	}
	return k.readable, true
}

// Tags is an unordered set of free-text labels on a media item.
type Tags map[string]struct{}

func NewTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

func (t Tags) Add(name string)      { t[name] = struct{}{} }
func (t Tags) Has(name string) bool { _, ok := t[name]; return ok }

// Sorted returns the tags as a sorted slice for stable output.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t))
	for name := range t {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FavoriteTag is overloaded as a boolean favorite flag at the API boundary.
const FavoriteTag = "favorite"

// MediaItem is the aggregate record for one tracked work.
//
// Score and GlobalScore hold the 0-100 encoded form (see score.go);
// GlobalScore comes from an external catalog, Score from the user.
// ExternalID is the provider-side numeric id, absent for providers with
// non-numeric ids. Source names which catalog the item was imported from.
type MediaItem struct {
	ID          uuid.UUID
	Title       string
	Kind        MediaKind
	Score       *uint8
	GlobalScore *uint8
	ExternalID  *uint32
	PosterURL   *string
	Source      *string
	Tags        Tags
}

// NewMediaItem creates an item with a fresh id and empty tag set.
func NewMediaItem(title string, kind MediaKind) MediaItem {
	return MediaItem{
		ID:    uuid.New(),
		Title: title,
		Kind:  kind,
		Tags:  NewTags(),
	}
}

// SetScore stores a 0.0-10.0 rating. Out-of-range input is clamped, never
// rejected.
func (m *MediaItem) SetScore(display float64) {
	s := EncodeScore(display)
	m.Score = &s
}

func (m *MediaItem) SetGlobalScore(display float64) {
	s := EncodeScore(display)
	m.GlobalScore = &s
}

func (m *MediaItem) ScoreDisplay() (float64, bool) {
	if m.Score == nil {
		return 0, false
	}
	return DecodeScore(*m.Score), true
}

func (m *MediaItem) GlobalScoreDisplay() (float64, bool) {
	if m.GlobalScore == nil {
		return 0, false
	}
	return DecodeScore(*m.GlobalScore), true
}

// IsCompleted reports whether the item's status is completed, or, for series
// and readables, whether the embedded progress has reached its total even if
// the status was never set. Movies have no progress to infer from.
func (m *MediaItem) IsCompleted() bool {
	switch m.Kind.tag {
	case KindMovie:
		return m.Kind.watch == WatchDone
	case KindSeries:
		return m.Kind.watch == WatchDone || m.Kind.progress.IsFinished()
	case KindReadable:
		return m.Kind.read == ReadDone || m.Kind.progress.IsFinished()
	}
	return false
}

// ForceComplete sets the kind-appropriate completed status and, for series
// and readables, fast-forwards the progress. Idempotent.
func (m *MediaItem) ForceComplete() {
	switch m.Kind.tag {
	case KindMovie:
		m.Kind.watch = WatchDone
	case KindSeries:
		m.Kind.watch = WatchDone
		m.Kind.progress.ForceComplete()
	case KindReadable:
		m.Kind.read = ReadDone
		m.Kind.progress.ForceComplete()
	}
}
