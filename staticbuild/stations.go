package staticbuild

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"caltrain.dev/transit/model"
)

const locationTypeStation = 1

// cleanStationName strips the agency-specific " Caltrain Station "
// cosmetic marker and trims surrounding whitespace.
func cleanStationName(name string) string {
	name = strings.ReplaceAll(name, " Caltrain Station ", " ")
	name = strings.TrimSuffix(name, " Caltrain Station")
	return strings.TrimSpace(name)
}

// stationSet is the intermediate result of canonical station
// construction: the stations themselves, a map from every upstream
// stop id (platform or parent) to its canonical station id, and the
// station ids in the order their parent rows first appeared in
// stops.txt (the north-to-south ordering clients use for picker UI).
type stationSet struct {
	Stations map[string]model.Station
	StopToID map[string]string
	Ordered  []string
}

// buildStations implements §4.3 step 1: parent stations become
// canonical stations, platform stops are attached to their parent
// (which inherits the first non-empty child zone if it has none), and
// parents with zero children are dropped.
func buildStations(rows []*StopRow) (*stationSet, error) {
	byID := map[string]*StopRow{}
	for _, r := range rows {
		if r.ID == "" {
			return nil, errors.New("empty stop_id")
		}
		if _, dup := byID[r.ID]; dup {
			return nil, errors.Errorf("repeated stop_id '%s'", r.ID)
		}
		byID[r.ID] = r
	}

	type building struct {
		row      *StopRow
		children []string
	}

	parents := map[string]*building{}
	var parentOrder []string
	for _, r := range rows {
		if r.LocationType != locationTypeStation {
			continue
		}
		parents[r.ID] = &building{row: r}
		parentOrder = append(parentOrder, r.ID)
	}

	stopToID := map[string]string{}
	for _, r := range rows {
		if r.LocationType == locationTypeStation {
			continue
		}
		if r.ParentStation == "" {
			continue
		}
		parent, ok := parents[r.ParentStation]
		if !ok {
			return nil, errors.Errorf("stop '%s' references unknown parent_station '%s'", r.ID, r.ParentStation)
		}
		parent.children = append(parent.children, r.ID)
		stopToID[r.ID] = r.ParentStation
	}

	stations := map[string]model.Station{}
	var ordered []string
	for _, id := range parentOrder {
		b := parents[id]
		if len(b.children) == 0 {
			continue
		}

		zone := b.row.ZoneID
		if zone == "" {
			// Inherit the first non-empty child zone, in the order
			// children appeared in stops.txt.
			for _, childID := range b.children {
				if z := byID[childID].ZoneID; z != "" {
					zone = z
					break
				}
			}
		}

		ids := append([]string{}, b.children...)
		sort.Strings(ids)

		stations[id] = model.Station{
			Name: cleanStationName(b.row.Name),
			Zone: zone,
			Ids:  ids,
			Lat:  b.row.Lat,
			Lon:  b.row.Lon,
		}
		stopToID[id] = id
		ordered = append(ordered, id)
	}

	return &stationSet{Stations: stations, StopToID: stopToID, Ordered: ordered}, nil
}
