// Package staticbuild implements the static schedule builder: it
// consumes the CSV tables inside a GTFS archive and produces one
// StaticSchedule value. The only I/O boundary is reading the archive
// bytes; everything past that is a deterministic transform — same
// input, byte-identical output.
package staticbuild

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"caltrain.dev/transit/model"
)

// SchemaVersion is the schema version the builder and client agree on.
const SchemaVersion = 1

// requiredFiles are required for a usable build; farezone_attributes
// and fare tables are optional (an agency may not publish fares).
var requiredFiles = []string{
	"stops.txt", "routes.txt", "trips.txt", "stop_times.txt",
}

var optionalFiles = []string{
	"calendar.txt", "calendar_dates.txt",
	"fare_attributes.txt", "fare_rules.txt", "farezone_attributes.txt",
}

// Build runs the full static schedule pipeline over a GTFS zip
// archive's raw bytes.
func Build(archive []byte) (*model.StaticSchedule, error) {
	files, err := openArchive(archive)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		return nil, fmt.Errorf("missing calendar.txt and calendar_dates.txt")
	}
	for _, name := range requiredFiles {
		if files[name] == nil {
			return nil, fmt.Errorf("missing %s", name)
		}
	}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	var stopRows []*StopRow
	if err := gocsv.Unmarshal(bytes.NewReader(files["stops.txt"]), &stopRows); err != nil {
		return nil, fmt.Errorf("parsing stops.txt: %w", err)
	}

	stations, err := buildStations(stopRows)
	if err != nil {
		return nil, fmt.Errorf("building stations: %w", err)
	}

	var routeRows []*RouteRow
	if err := gocsv.Unmarshal(bytes.NewReader(files["routes.txt"]), &routeRows); err != nil {
		return nil, fmt.Errorf("parsing routes.txt: %w", err)
	}
	routeShortName := map[string]string{}
	for _, r := range routeRows {
		name := r.ShortName
		if name == "" {
			name = r.ID
		}
		routeShortName[r.ID] = name
	}

	var tripRows []*TripRow
	if err := gocsv.Unmarshal(bytes.NewReader(files["trips.txt"]), &tripRows); err != nil {
		return nil, fmt.Errorf("parsing trips.txt: %w", err)
	}
	tripMeta := map[string]*TripRow{}
	knownTrips := map[string]bool{}
	for _, t := range tripRows {
		tripMeta[t.ID] = t
		knownTrips[t.ID] = true
	}

	var stopTimeRows []*StopTimeRow
	if err := gocsv.Unmarshal(bytes.NewReader(files["stop_times.txt"]), &stopTimeRows); err != nil {
		return nil, fmt.Errorf("parsing stop_times.txt: %w", err)
	}
	sequences, err := buildTripSequences(stopTimeRows, stations, knownTrips)
	if err != nil {
		return nil, fmt.Errorf("building trip sequences: %w", err)
	}

	patterns, trips, err := buildTripsAndPatterns(sequences, tripMeta, routeShortName)
	if err != nil {
		return nil, fmt.Errorf("building trips and patterns: %w", err)
	}

	var calendarRows []*CalendarRow
	if files["calendar.txt"] != nil {
		if err := gocsv.Unmarshal(bytes.NewReader(files["calendar.txt"]), &calendarRows); err != nil {
			return nil, fmt.Errorf("parsing calendar.txt: %w", err)
		}
	}
	calendars := buildCalendars(calendarRows)

	var calendarDateRows []*CalendarDateRow
	if files["calendar_dates.txt"] != nil {
		if err := gocsv.Unmarshal(bytes.NewReader(files["calendar_dates.txt"]), &calendarDateRows); err != nil {
			return nil, fmt.Errorf("parsing calendar_dates.txt: %w", err)
		}
	}
	exceptions := buildExceptions(calendarDateRows)

	var fareAttrRows []*FareAttributeRow
	if files["fare_attributes.txt"] != nil {
		if err := gocsv.Unmarshal(bytes.NewReader(files["fare_attributes.txt"]), &fareAttrRows); err != nil {
			return nil, fmt.Errorf("parsing fare_attributes.txt: %w", err)
		}
	}
	var fareRuleRows []*FareRuleRow
	if files["fare_rules.txt"] != nil {
		if err := gocsv.Unmarshal(bytes.NewReader(files["fare_rules.txt"]), &fareRuleRows); err != nil {
			return nil, fmt.Errorf("parsing fare_rules.txt: %w", err)
		}
	}
	var zoneRows []*FareZoneRow
	if files["farezone_attributes.txt"] != nil {
		if err := gocsv.Unmarshal(bytes.NewReader(files["farezone_attributes.txt"]), &zoneRows); err != nil {
			return nil, fmt.Errorf("parsing farezone_attributes.txt: %w", err)
		}
	}
	fares := buildFares(fareAttrRows, fareRuleRows, zoneRows)

	refs := make([]tripPatternRef, 0, len(trips))
	for _, t := range trips {
		refs = append(refs, tripPatternRef{TripID: t.ID, PatternID: t.PatternID})
	}
	pairIndex := buildPairIndex(patterns, refs)

	ordered := append([]string{}, stations.Ordered...)

	endDate := maxEndDate(calendars)

	hash := sha256.Sum256(archive)

	schedule := &model.StaticSchedule{
		Meta: model.ScheduleMeta{
			Version:       hex.EncodeToString(hash[:]),
			MaxEndDate:    endDate,
			SchemaVersion: SchemaVersion,
		},
		Patterns:  patterns,
		Trips:     trips,
		Rules:     model.Rules{Calendars: calendars, Exceptions: exceptions},
		Stations:  stations.Stations,
		Fares:     fares,
		PairIndex: pairIndex,
		Ordered:   ordered,
	}

	return schedule, nil
}

// openArchive unzips the GTFS bundle and returns the raw bytes of
// each table of interest, keyed by filename. Missing files are simply
// absent from the map — callers decide which are required.
func openArchive(archive []byte) (map[string][]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("unzipping: %w", err)
	}

	wanted := map[string]bool{}
	for _, name := range requiredFiles {
		wanted[name] = true
	}
	for _, name := range optionalFiles {
		wanted[name] = true
	}

	out := map[string][]byte{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		parts := strings.Split(f.Name, "/")
		name := parts[len(parts)-1]
		if !wanted[name] {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		out[name] = buf
	}

	return out, nil
}

