package persistence

import (
	"encoding/json"

	"github.com/nmbl-labs/formpath/pkg/domain"
)

// Record is the persisted envelope: the configured version, the write
// timestamp in epoch milliseconds, and the collected step data. The wire
// format is stable and must round-trip exactly:
//
//	{"version": 1, "timestamp": 1700000000000, "data": {"account": {...}}}
type Record struct {
	Version   int         `json:"version"`
	Timestamp int64       `json:"timestamp"`
	Data      domain.Data `json:"data"`
}

// encodeRecord serializes a record for storage.
func encodeRecord(r Record) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeRecord parses a stored value. Any malformed payload is an error;
// the caller treats it as "no saved state" and clears storage.
func decodeRecord(value string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return Record{}, err
	}
	if r.Data == nil {
		r.Data = domain.Data{}
	}
	return r, nil
}
