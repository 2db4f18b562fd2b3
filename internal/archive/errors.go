package archive

import "fmt"

// Two failure classes cross this package's boundaries. Wire errors reject a
// single request; a corrupt row aborts the whole load, since one bad row
// means the stored collection cannot be trusted. Lenient cases (unknown
// status strings, malformed tags JSON) are normalized, never errors.

// InvalidIDError reports a malformed item id received from a client.
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid item id %q", e.Value)
}

// UnknownMediaTypeError reports an unrecognized media_type tag received
// from a client.
type UnknownMediaTypeError struct {
	Value string
}

func (e *UnknownMediaTypeError) Error() string {
	return fmt.Sprintf("unknown media_type %q", e.Value)
}

// CorruptRowError reports a stored row that cannot be mapped back to a
// media item: an unrecognized media_type column or an unparseable id.
type CorruptRowError struct {
	Reason string
}

func (e *CorruptRowError) Error() string {
	return "corrupt media row: " + e.Reason
}
