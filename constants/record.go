package constants

// RecordType tags the structural role of one line.
type RecordType string

// Stable values (stored in configurations, keep these exact strings).
const (
	HeaderFile     RecordType = "header_file"
	HeaderBatch    RecordType = "header_batch"
	Detail         RecordType = "detail"
	DetailSegmentP RecordType = "detail_segment_p"
	DetailSegmentQ RecordType = "detail_segment_q"
	DetailSegmentR RecordType = "detail_segment_r"
	DetailSegmentA RecordType = "detail_segment_a"
	DetailSegmentB RecordType = "detail_segment_b"
	TrailerBatch   RecordType = "trailer_batch"
	TrailerFile    RecordType = "trailer_file"
	Unknown        RecordType = "unknown"
)

var allRecordTypes = []RecordType{
	HeaderFile,
	HeaderBatch,
	Detail,
	DetailSegmentP,
	DetailSegmentQ,
	DetailSegmentR,
	DetailSegmentA,
	DetailSegmentB,
	TrailerBatch,
	TrailerFile,
}

// AllRecordTypes returns every classifiable record type (unknown excluded).
func AllRecordTypes() []RecordType {
	out := make([]RecordType, len(allRecordTypes))
	copy(out, allRecordTypes)
	return out
}

// IsExtractable reports whether lines of this type feed bulk extraction.
func (t RecordType) IsExtractable() bool {
	return t == Detail || t == DetailSegmentP || t == DetailSegmentQ
}

// Code returns the record code and the segment letter (empty when the type has
// no segment) used by the legacy flattened configuration view.
func (t RecordType) Code(kind Kind) (string, string) {
	switch t {
	case HeaderFile:
		return "0", ""
	case HeaderBatch:
		return "1", ""
	case Detail:
		if kind == Kind400 {
			return "1", ""
		}
		return "3", ""
	case DetailSegmentP:
		return "3", "P"
	case DetailSegmentQ:
		return "3", "Q"
	case DetailSegmentR:
		return "3", "R"
	case DetailSegmentA:
		return "3", "A"
	case DetailSegmentB:
		return "3", "B"
	case TrailerBatch:
		return "5", ""
	case TrailerFile:
		return "9", ""
	}
	return "", ""
}

// Key is the record-type key of the legacy view: code plus segment letter.
func (t RecordType) Key(kind Kind) string {
	code, seg := t.Code(kind)
	return code + seg
}
