package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidRecord      = errors.New("invalid record")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrEmptyWindow        = errors.New("no records in window")
	ErrMissingBackend     = errors.New("classification backend unavailable")
	ErrInvalidWindow      = errors.New("invalid time window")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// RecordIssue is a per-record problem found while loading or aggregating.
// It never aborts the batch.
type RecordIssue struct {
	Row    int
	Kind   error
	Detail string
}

func (i RecordIssue) Error() string {
	return fmt.Sprintf("row %d: %v: %s", i.Row, i.Kind, i.Detail)
}

func (i RecordIssue) Unwrap() error {
	return i.Kind
}

// KindName is the short, stable name used in logs and metrics.
func (i RecordIssue) KindName() string {
	return IssueKindName(i.Kind)
}

// IssueKindOf maps a kind name back to its sentinel. Unknown names yield a
// fresh error carrying the name.
func IssueKindOf(name string) error {
	switch name {
	case "malformed_timestamp":
		return ErrMalformedTimestamp
	case "invalid_record":
		return ErrInvalidRecord
	default:
		return errors.New(name)
	}
}

func IssueKindName(err error) string {
	switch {
	case errors.Is(err, ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, ErrInvalidRecord):
		return "invalid_record"
	default:
		return "unknown"
	}
}

type recordIssueJSON struct {
	Row    int    `json:"row"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func (i RecordIssue) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordIssueJSON{i.Row, i.KindName(), i.Detail})
}

func (i *RecordIssue) UnmarshalJSON(b []byte) error {
	var raw recordIssueJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*i = RecordIssue{Row: raw.Row, Kind: IssueKindOf(raw.Kind), Detail: raw.Detail}
	return nil
}
