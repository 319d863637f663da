// Package export renders the scorecard store into shareable artifacts:
// a CSV of all judge feedback and a slide deck outline for presenting
// the flight.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/scoring"
)

// csvHeader is the fixed column set of the feedback export.
var csvHeader = []string{
	"Flight #", "Brewer", "Style", "Judge",
	"Aroma", "Appearance", "Flavor", "Mouthfeel", "Overall",
	"Total", "Notes",
}

// CSV renders every feedback record as one row, joined with its entry.
// Rows keep submission order; the flight number is the entry's position
// in registration order, 1-based.
func CSV(snap model.Snapshot) ([]byte, error) {
	position := make(map[string]int, len(snap.Entries))
	styles := make(map[string]string, len(snap.Entries))
	for i, e := range snap.Entries {
		position[e.ID] = i + 1
		styles[e.ID] = e.Style
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, f := range snap.Feedback {
		// Feedback whose entry vanished still exports: flight 0 and an
		// Unknown style, with the brewer and scores as submitted.
		pos := position[f.BeerID]
		style := styles[f.BeerID]
		if style == "" {
			style = "Unknown"
		}
		row := []string{
			strconv.Itoa(pos),
			f.BrewerName,
			style,
			f.JudgeName,
			strconv.Itoa(f.Aroma),
			strconv.Itoa(f.Appearance),
			strconv.Itoa(f.Flavor),
			strconv.Itoa(f.Mouthfeel),
			strconv.Itoa(f.Overall),
			strconv.Itoa(scoring.Total(f)),
			f.Notes,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
