package port

import (
	"io"

	"fleetdesk/internal/domain"
)

// RecordSink serializes a canonical record set for an external consumer. The
// core guarantees stable column order and null markers; the sink owns the
// target format.
type RecordSink interface {
	WriteRecordSet(w io.Writer, set *domain.RecordSet) error
}
