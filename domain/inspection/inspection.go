// Package inspection models periodic wall-thickness survey data.
package inspection

import (
	"fmt"
	"sort"
	"time"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
)

// ThicknessReading is one CML measurement, in inches at 4-digit precision.
type ThicknessReading struct {
	CMLID            core.CMLID `json:"cml_id"`
	Location         string     `json:"location"`
	Measured         dec.Dec    `json:"measured_in"`
	PreviousMeasured *dec.Dec   `json:"previous_measured_in,omitempty"`
}

// Record is one inspection event: a dated, certified set of readings.
type Record struct {
	Date                  time.Time          `json:"date"`
	InspectorCertification string            `json:"inspector_certification"`
	Readings              []ThicknessReading `json:"readings"`
}

// MinimumReading returns the governing (thinnest) reading of the record.
func (r Record) MinimumReading() (ThicknessReading, error) {
	if len(r.Readings) == 0 {
		return ThicknessReading{}, fmt.Errorf("inspection record has no readings")
	}
	min := r.Readings[0]
	for _, rd := range r.Readings[1:] {
		if rd.Measured.LessThan(min.Measured) {
			min = rd
		}
	}
	return min, nil
}

// Series is a chronologically ordered set of inspection records.
type Series []Record

// Sorted returns a copy ordered by date ascending.
func (s Series) Sorted() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Latest returns the most recent record.
func (s Series) Latest() (Record, error) {
	if len(s) == 0 {
		return Record{}, fmt.Errorf("no inspection records")
	}
	sorted := s.Sorted()
	return sorted[len(sorted)-1], nil
}

// MinimumPoint is one (date, governing thickness) observation used by the
// trend analyzer.
type MinimumPoint struct {
	Date     time.Time
	Measured dec.Dec
}

// MinimumSeries extracts the governing reading of each record in
// chronological order.
func (s Series) MinimumSeries() ([]MinimumPoint, error) {
	sorted := s.Sorted()
	points := make([]MinimumPoint, 0, len(sorted))
	for i, rec := range sorted {
		min, err := rec.MinimumReading()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		points = append(points, MinimumPoint{Date: rec.Date, Measured: min.Measured})
	}
	return points, nil
}
