// Package gtfsrt decodes a single GTFS-RT FeedMessage buffer into its
// entities. It is a pure function: no I/O, no partial recovery on
// malformed input.
package gtfsrt

import (
	"fmt"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DecodeError wraps a failure to decode a feed message. Callers can
// type-assert or errors.As against it to distinguish wire-decode
// failures from other error kinds.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gtfsrt: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Feed is the decoded shape of one GTFS-RT FeedMessage: a timestamp
// and the raw entity list. Entities are left as the generated
// protobuf type so the merger can work directly against the public
// GTFS-RT schema, per the spec's design notes.
type Feed struct {
	Timestamp uint64
	Entities  []*gtfsproto.FeedEntity
}

// Decode turns a protobuf FeedMessage payload into a Feed. It
// validates the envelope (supported version, FULL_DATASET
// incrementality) but does not interpret entity contents — that is
// the merger's job.
func Decode(buf []byte) (*Feed, error) {
	msg := &gtfsproto.FeedMessage{}
	if err := proto.Unmarshal(buf, msg); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("unmarshaling protobuf: %w", err)}
	}

	header := msg.GetHeader()

	version := header.GetGtfsRealtimeVersion()
	if version != "2.0" && version != "1.0" {
		return nil, &DecodeError{Err: fmt.Errorf("unsupported gtfs-realtime version %q", version)}
	}

	if header.GetIncrementality() != gtfsproto.FeedHeader_FULL_DATASET {
		return nil, &DecodeError{Err: fmt.Errorf("unsupported incrementality %s", header.GetIncrementality())}
	}

	return &Feed{
		Timestamp: header.GetTimestamp(),
		Entities:  msg.GetEntity(),
	}, nil
}
