package objectives

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates instance sub-records inside a save blob. Sub-records only
// contain digits, '-' and FieldSeparator, so it never appears inside one.
const Delimiter = "|"

// FieldSeparator separates the objective ID from the state ID in a sub-record.
const FieldSeparator = ":"

// Record is the persisted form of one objective instance.
type Record struct {
	ObjectiveID int
	StateID     int
}

// String encodes the record as "<objectiveID>:<stateID>".
func (r Record) String() string {
	return strconv.Itoa(r.ObjectiveID) + FieldSeparator + strconv.Itoa(r.StateID)
}

// ParseRecord decodes a single sub-record.
func ParseRecord(chunk string) (Record, error) {
	idPart, statePart, ok := strings.Cut(chunk, FieldSeparator)
	if !ok {
		return Record{}, fmt.Errorf("record %q: missing %q", chunk, FieldSeparator)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return Record{}, fmt.Errorf("record %q: objective id: %w", chunk, err)
	}
	state, err := strconv.Atoi(statePart)
	if err != nil {
		return Record{}, fmt.Errorf("record %q: state id: %w", chunk, err)
	}
	return Record{ObjectiveID: id, StateID: state}, nil
}

// EncodeRecords joins records into a save blob. An empty slice yields "".
func EncodeRecords(records []Record) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString(Delimiter)
		}
		b.WriteString(r.String())
	}
	return b.String()
}

// DecodeRecords splits a save blob into records. Chunks that fail to parse are
// skipped and returned as errors so callers can log them; they never abort the decode.
func DecodeRecords(blob string) ([]Record, []error) {
	if blob == "" {
		return nil, nil
	}
	var (
		records []Record
		errs    []error
	)
	for _, chunk := range strings.Split(blob, Delimiter) {
		r, err := ParseRecord(chunk)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, r)
	}
	return records, errs
}
