// Package model holds the cross-tier JSON contract shared by the
// schedule bundler, the realtime aggregator and the read API. Field
// names are part of the wire contract and must not change.
package model

// Station is a rider-visible stop aggregating one or more platform
// stops. Built from parent_station rows in the upstream archive.
type Station struct {
	Name string   `json:"n"`
	Zone string   `json:"z"`
	Ids  []string `json:"ids"`
	Lat  float64  `json:"lat"`
	Lon  float64  `json:"lon"`
}

// Trip is a single scheduled run.
type Trip struct {
	ID        string `json:"i"`
	ServiceID string `json:"s"`
	PatternID string `json:"p"`
	Direction int    `json:"d"`
	// StopTimes is interleaved [arr0, dep0, arr1, dep1, ...] in
	// minutes past local midnight. len(StopTimes) == 2*len(pattern.Stops).
	StopTimes []int  `json:"st"`
	RouteType string `json:"rt"`
}

// CalendarEntry is a service id with a weekday mask and date range,
// all dates as YYYYMMDD integers.
type CalendarEntry struct {
	Days  [7]int `json:"days"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// CalendarException is a single calendar_dates.txt override.
type CalendarException struct {
	Date int `json:"date"`
	Type int `json:"type"`
}

// ZoneInfo is fare-zone metadata.
type ZoneInfo struct {
	Name string `json:"name"`
}

// Fares holds zone metadata and the direct zone-pair price lookup, in
// integer cents.
type Fares struct {
	Zones map[string]ZoneInfo `json:"zones"`
	Fares map[string]int      `json:"fares"`
}

// Rules bundles the two calendar maps.
type Rules struct {
	Calendars  map[string]CalendarEntry       `json:"c"`
	Exceptions map[string][]CalendarException `json:"e"`
}

// ScheduleMeta is the small metadata blob published alongside the
// schedule bundle. RealtimeAge is derived at serve time, never stored.
type ScheduleMeta struct {
	Version       string `json:"v"`
	MaxEndDate    int    `json:"e"`
	SchemaVersion int    `json:"sv"`
	RealtimeAge   *int64 `json:"realtimeAge,omitempty"`
}

// StaticSchedule is the compact JSON bundle clients deserialize on
// cold start. Map types use insertion-independent equality; order is
// not contractual.
type StaticSchedule struct {
	Meta     ScheduleMeta         `json:"m"`
	Patterns map[string][]string  `json:"p"`
	Trips    []Trip               `json:"t"`
	Rules    Rules                `json:"r"`
	Stations map[string]Station   `json:"s"`
	Fares    Fares                `json:"f"`
	// PairIndex maps "originStation→destStation" to the trip ids
	// serving that ordered pair.
	PairIndex map[string][]string `json:"x"`
	// Ordered is the canonical north-to-south station ordering.
	Ordered []string `json:"o"`
}

// VehiclePosition is a quantized vehicle fix.
type VehiclePosition struct {
	Lat     float64  `json:"la"`
	Lon     float64  `json:"lo"`
	Bearing *float64 `json:"b,omitempty"`
	Speed   *float64 `json:"sp,omitempty"`
}

// ProgressState mirrors the upstream current_status enum, collapsed
// to the three values the client cares about.
type ProgressState int

const (
	ProgressIncoming ProgressState = 0
	ProgressStopped  ProgressState = 1
	ProgressInTransit ProgressState = 2
)

// TripStatus is the per-trip realtime record. Only fields with real
// signal are populated; zero values are omitted from the JSON.
type TripStatus struct {
	Delay      *int64           `json:"d,omitempty"`
	Time       *int64           `json:"t,omitempty"`
	Stop       string           `json:"s,omitempty"`
	State      *ProgressState   `json:"st,omitempty"`
	Position   *VehiclePosition `json:"p,omitempty"`
}

// Alert is a service alert, English-translated.
type Alert struct {
	Header       string   `json:"h"`
	Description  string   `json:"d"`
	Cause        string   `json:"c,omitempty"`
	Effect       string   `json:"e,omitempty"`
	Stops        []string `json:"s,omitempty"`
	Trips        []string `json:"tr,omitempty"`
	ActiveStart  *int64   `json:"st,omitempty"`
	ActiveEnd    *int64   `json:"en,omitempty"`
}

// RealtimeStatus is the merged per-trip view published to
// realtime:status.
type RealtimeStatus struct {
	Timestamp int64                 `json:"t"`
	ByTrip    map[string]TripStatus `json:"byTrip"`
	Alerts    []Alert               `json:"a"`
}
