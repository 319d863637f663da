package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/ocmu/mashup/internal/domain/model"
)

// Deck title constants.
const (
	deckTitle = "ORANGE COUNTY MASH UPS"

	// dateLayout matches the en-US short date used on the title slide.
	dateLayout = "1/2/2006"
)

// Slide is one rendered slide of the session deck.
type Slide struct {
	Heading  string `json:"heading"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Deck is the presentation outline for a judging session: a title slide
// followed by one slide per entry in registration order.
type Deck struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// BuildDeck assembles the session deck from the current store.
func BuildDeck(snap model.Snapshot, date time.Time) Deck {
	d := Deck{
		Title: deckTitle,
		Slides: []Slide{{
			Title:    deckTitle,
			Subtitle: "SESSION: " + date.Format(dateLayout),
		}},
	}
	for i, e := range snap.Entries {
		d.Slides = append(d.Slides, Slide{
			Heading:  fmt.Sprintf("ENTRY #%d", i+1),
			Title:    strings.ToUpper(e.Style),
			Subtitle: "BREWED BY: " + e.Brewer,
		})
	}
	return d
}
