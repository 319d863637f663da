package flightsim

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/scoring"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	temperamentCount   = 4
)

// Judge temperament cases.
const (
	caseAverageJudge  = 0
	caseGenerousJudge = 1
	caseHarshJudge    = 2
	caseErraticJudge  = 3
)

// styleCatalog covers the categories a club flight usually spans. The
// leading number is the flight-sort category.
var styleCatalog = []string{
	"1A Light Lager",
	"4B Festbier",
	"10A Weissbier",
	"14C Scottish Export",
	"18B American Pale Ale",
	"19C American Brown Ale",
	"20B American Stout",
	"21A American IPA",
	"23A Berliner Weisse",
	"25B Saison",
	"29A Fruit Beer",
	"33B Specialty Wood-Aged Beer",
}

var brewerNames = []string{
	"Sam Altbier", "Alex Grist", "Casey Sparge", "Jordan Wort",
	"Riley Krausen", "Morgan Lauter", "Drew Pitchrate", "Quinn Flocc",
}

var judgeNames = []string{
	"Pat", "Lee", "Robin", "Jesse", "Avery", "Cameron", "Devon", "Skyler",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateEntries creates a flight of n entries.
func generateEntries(n int) []model.Entry {
	now := time.Now().UnixMilli()
	entries := make([]model.Entry, n)
	for i := range entries {
		entries[i] = model.Entry{
			ID:           uuid.New().String(),
			Style:        styleCatalog[randomIndex(len(styleCatalog))],
			Brewer:       brewerNames[i%len(brewerNames)],
			ABV:          fmt.Sprintf("%.1f", 4.0+getRandomFloat()*6.0),
			IBU:          fmt.Sprintf("%d", 10+randomIndex(70)),
			Description:  fmt.Sprintf("Simulated flight entry %d", i+1),
			RegisteredAt: now + int64(i),
		}
	}
	return entries
}

// judge scores entries with a fixed temperament so the resulting
// rankings have realistic spread.
type judge struct {
	name string
	bias float64
}

// newJudge picks a name and a scoring temperament.
func newJudge(i int) judge {
	name := judgeNames[i%len(judgeNames)]
	t, _ := rand.Int(rand.Reader, big.NewInt(temperamentCount))
	switch t.Int64() {
	case caseGenerousJudge:
		return judge{name: name, bias: 0.85}
	case caseHarshJudge:
		return judge{name: name, bias: 0.35}
	case caseErraticJudge:
		return judge{name: name, bias: getRandomFloat()}
	case caseAverageJudge:
		fallthrough
	default:
		return judge{name: name, bias: 0.6}
	}
}

// score produces a category score around the judge's bias.
func (j judge) score(max int) int {
	jitter := (getRandomFloat() - 0.5) * 0.4
	v := int(float64(max) * (j.bias + jitter))
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// feedbackFor builds one judge's feedback for an entry.
func (j judge) feedbackFor(e model.Entry, now int64) model.Feedback {
	return model.Feedback{
		ID:         uuid.New().String(),
		BeerID:     e.ID,
		BrewerName: e.Brewer,
		JudgeName:  j.name,
		Aroma:      j.score(scoring.MaxAroma),
		Appearance: j.score(scoring.MaxAppearance),
		Flavor:     j.score(scoring.MaxFlavor),
		Mouthfeel:  j.score(scoring.MaxMouthfeel),
		Overall:    j.score(scoring.MaxOverall),
		Notes:      "simulated tasting notes",
		Timestamp:  now,
	}
}
