// Package merge implements the realtime merger: it consumes three
// decoded GTFS-RT feeds (trip updates, vehicle positions, alerts) and
// produces one coherent per-trip RealtimeStatus. Pure function, no I/O.
package merge

import (
	"math"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"caltrain.dev/transit/gtfsrt"
	"caltrain.dev/transit/model"
)

// Merge joins the three feeds per the deterministic algorithm: trip
// updates drive the per-trip delay/stop/time signal, vehicle
// positions are quantized and attached by trip id, and alerts are
// flattened to their English translation. The feed timestamp is the
// max of the three source timestamps.
func Merge(tripUpdates, vehiclePositions, alerts *gtfsrt.Feed) model.RealtimeStatus {
	status := model.RealtimeStatus{
		ByTrip: map[string]model.TripStatus{},
		Alerts: []model.Alert{},
	}

	byTrip := map[string]model.TripStatus{}
	if tripUpdates != nil {
		for _, entity := range tripUpdates.Entities {
			tu := entity.GetTripUpdate()
			if tu == nil {
				continue
			}
			tripID := tu.GetTrip().GetTripId()
			if tripID == "" {
				continue
			}
			byTrip[tripID] = mergeTripUpdate(tu)
		}
	}

	if vehiclePositions != nil {
		positions := map[string]model.VehiclePosition{}
		for _, entity := range vehiclePositions.Entities {
			vp := entity.GetVehicle()
			if vp == nil {
				continue
			}
			tripID := vp.GetTrip().GetTripId()
			if tripID == "" {
				continue
			}
			pos, ok := quantizePosition(vp)
			if !ok {
				continue
			}
			positions[tripID] = pos
		}

		for tripID, ts := range byTrip {
			if pos, ok := positions[tripID]; ok {
				p := pos
				ts.Position = &p
				byTrip[tripID] = ts
			}
		}
	}

	status.ByTrip = byTrip

	if alerts != nil {
		for _, entity := range alerts.Entities {
			a := entity.GetAlert()
			if a == nil {
				continue
			}
			status.Alerts = append(status.Alerts, mergeAlert(a))
		}
	}

	status.Timestamp = maxTimestamp(tripUpdates, vehiclePositions, alerts)

	return status
}

func mergeTripUpdate(tu *gtfsproto.TripUpdate) model.TripStatus {
	var ts model.TripStatus

	updates := tu.GetStopTimeUpdate()

	// Stop context: the first stop_time_update carrying a stop id.
	for _, u := range updates {
		if u.GetStopId() != "" {
			ts.Stop = u.GetStopId()
			break
		}
	}

	var delay int64
	var delayStop string
	var delayFound bool
	var eventTime int64
	var timeFound bool

	for _, u := range updates {
		if !delayFound {
			if d := u.GetDeparture().GetDelay(); d != 0 {
				delay, delayStop, delayFound = int64(d), u.GetStopId(), true
			} else if d := u.GetArrival().GetDelay(); d != 0 {
				delay, delayStop, delayFound = int64(d), u.GetStopId(), true
			}
		}
		if !timeFound {
			if tm := u.GetDeparture().GetTime(); tm != 0 {
				eventTime, timeFound = tm, true
			} else if tm := u.GetArrival().GetTime(); tm != 0 {
				eventTime, timeFound = tm, true
			}
		}
	}

	if delayFound {
		ts.Stop = delayStop
		ts.Delay = &delay
	} else if d := tu.GetDelay(); d != 0 {
		v := int64(d)
		ts.Delay = &v
	}

	if timeFound {
		ts.Time = &eventTime
	}

	state := model.ProgressInTransit
	ts.State = &state

	return ts
}

// quantizePosition rounds latitude/longitude to five decimal places
// (half away from zero) and reports whether the position is valid
// enough to include. Non-finite coordinates are discarded.
func quantizePosition(vp *gtfsproto.VehiclePosition) (model.VehiclePosition, bool) {
	pos := vp.GetPosition()
	if pos == nil {
		return model.VehiclePosition{}, false
	}

	lat := float64(pos.GetLatitude())
	lon := float64(pos.GetLongitude())
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return model.VehiclePosition{}, false
	}

	out := model.VehiclePosition{
		Lat: quantize5(lat),
		Lon: quantize5(lon),
	}

	if b := pos.GetBearing(); b != 0 {
		bf := float64(b)
		out.Bearing = &bf
	}
	if s := pos.GetSpeed(); s != 0 {
		sf := float64(s)
		out.Speed = &sf
	}

	return out, true
}

func quantize5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

func mergeAlert(a *gtfsproto.Alert) model.Alert {
	out := model.Alert{
		Header:      firstEnglishTranslation(a.GetHeaderText()),
		Description: firstEnglishTranslation(a.GetDescriptionText()),
	}

	if a.Cause != nil {
		out.Cause = a.GetCause().String()
	}
	if a.Effect != nil {
		out.Effect = a.GetEffect().String()
	}

	for _, ie := range a.GetInformedEntity() {
		if stopID := ie.GetStopId(); stopID != "" {
			out.Stops = append(out.Stops, stopID)
		}
		if tripID := ie.GetTrip().GetTripId(); tripID != "" {
			out.Trips = append(out.Trips, tripID)
		}
	}

	if periods := a.GetActivePeriod(); len(periods) > 0 {
		p := periods[0]
		if p.Start != nil {
			start := int64(p.GetStart())
			out.ActiveStart = &start
		}
		if p.End != nil {
			end := int64(p.GetEnd())
			out.ActiveEnd = &end
		}
	}

	return out
}

// firstEnglishTranslation returns the "en" translation of a
// TranslatedString, or the empty string if none is present.
func firstEnglishTranslation(ts *gtfsproto.TranslatedString) string {
	if ts == nil {
		return ""
	}
	for _, tr := range ts.GetTranslation() {
		if tr.GetLanguage() == "en" {
			return tr.GetText()
		}
	}
	return ""
}

func maxTimestamp(feeds ...*gtfsrt.Feed) int64 {
	var max int64
	for _, f := range feeds {
		if f == nil {
			continue
		}
		if ts := int64(f.Timestamp); ts > max {
			max = ts
		}
	}
	return max
}
