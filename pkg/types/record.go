package types

import "time"

// ScanRecord is the per-target aggregate: the merged fields of every
// enabled module plus failure markers. Exactly one record is emitted per
// target, owned by the single task that scanned it.
type ScanRecord struct {
	Target    Target
	Timestamp int64
	Fields    Fields
}

// NewScanRecord creates a record for target stamped with the current
// Unix time.
func NewScanRecord(target Target) ScanRecord {
	return ScanRecord{
		Target:    target,
		Timestamp: time.Now().Unix(),
		Fields:    make(Fields),
	}
}

// Flatten returns the record as one flat mapping, with the target and
// timestamp folded in under their reserved keys. Output formatters
// consume this shape.
func (r ScanRecord) Flatten() Fields {
	out := r.Fields.Clone()
	out["subdomain"] = string(r.Target)
	out["timestamp"] = r.Timestamp
	return out
}
