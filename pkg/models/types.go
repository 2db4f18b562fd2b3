package models

// WatchStatus tracks where the user is with a movie or series.
type WatchStatus string

const (
	Watching    WatchStatus = "watching"
	PlanToWatch WatchStatus = "plan_to_watch"
	WatchDone   WatchStatus = "completed"
	WatchOnHold WatchStatus = "on_hold"
	WatchDrop   WatchStatus = "dropped"
)

// ReadStatus is the reading-side counterpart of WatchStatus.
type ReadStatus string

const (
	Reading    ReadStatus = "reading"
	PlanToRead ReadStatus = "plan_to_read"
	ReadDone   ReadStatus = "completed"
	ReadOnHold ReadStatus = "on_hold"
	ReadDrop   ReadStatus = "dropped"
)

// ReadableKind is the secondary discriminator for readable media.
type ReadableKind string

const (
	Book       ReadableKind = "book"
	WebNovel   ReadableKind = "web_novel"
	LightNovel ReadableKind = "light_novel"
	Manga      ReadableKind = "manga"
	Manhwa     ReadableKind = "manhwa"
	Webtoon    ReadableKind = "webtoon"
)

// ParseWatchStatus maps a free-text status to a WatchStatus. Reading-side
// names are accepted as equivalents; anything unrecognized falls back to
// plan_to_watch rather than failing.
func ParseWatchStatus(s string) WatchStatus {
	switch s {
	case "watching", "reading":
		return Watching
	case "plan_to_watch", "plan_to_read":
		return PlanToWatch
	case "completed":
		return WatchDone
	case "on_hold":
		return WatchOnHold
	case "dropped":
		return WatchDrop
	default:
		return PlanToWatch
	}
}

// ParseReadStatus is the reading-side twin of ParseWatchStatus; unrecognized
// values fall back to plan_to_read.
func ParseReadStatus(s string) ReadStatus {
	switch s {
	case "reading", "watching":
		return Reading
	case "plan_to_read", "plan_to_watch":
		return PlanToRead
	case "completed":
		return ReadDone
	case "on_hold":
		return ReadOnHold
	case "dropped":
		return ReadDrop
	default:
		return PlanToRead
	}
}

// ParseReadableKind maps a stored sub-kind string; unknown values fall back
// to book.
func ParseReadableKind(s string) ReadableKind {
	switch s {
	case "book":
		return Book
	case "web_novel":
		return WebNovel
	case "light_novel":
		return LightNovel
	case "manga":
		return Manga
	case "manhwa":
		return Manhwa
	case "webtoon":
		return Webtoon
	default:
		return Book
	}
}
