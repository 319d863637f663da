package ranking_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/ranking"
)

func fb(beerID, brewer string, total int) model.Feedback {
	// Spread the total across sub-scores within rubric bounds.
	f := model.Feedback{BeerID: beerID, BrewerName: brewer, JudgeName: "judge"}
	take := func(max int) int {
		n := total
		if n > max {
			n = max
		}
		total -= n
		return n
	}
	f.Flavor = take(20)
	f.Aroma = take(12)
	f.Overall = take(10)
	f.Mouthfeel = take(5)
	f.Appearance = take(3)
	return f
}

func TestEntryStandings(t *testing.T) {
	Convey("Given an entry with two scorecards totaling 38 and 44", t, func() {
		snap := model.Snapshot{
			Entries: []model.Entry{
				{ID: "e1", Style: "21A. American IPA", Brewer: "Acme Brewing"},
			},
			Feedback: []model.Feedback{
				fb("e1", "Acme Brewing", 38),
				fb("e1", "Acme Brewing", 44),
			},
		}

		Convey("When computing entry standings", func() {
			standings := ranking.Entries(snap)

			Convey("Then the average is 41.0 over 2 scorecards", func() {
				So(standings, ShouldHaveLength, 1)
				So(standings[0].Avg, ShouldEqual, 41.0)
				So(standings[0].Count, ShouldEqual, 2)
			})
		})
	})

	Convey("Given an entry with no feedback", t, func() {
		snap := model.Snapshot{
			Entries: []model.Entry{{ID: "e1", Style: "1A", Brewer: "b"}},
		}

		Convey("Then its average short-circuits to zero", func() {
			standings := ranking.Entries(snap)
			So(standings, ShouldHaveLength, 1)
			So(standings[0].Avg, ShouldEqual, 0.0)
			So(standings[0].Count, ShouldEqual, 0)
		})
	})

	Convey("Given entries with equal averages", t, func() {
		snap := model.Snapshot{
			Entries: []model.Entry{
				{ID: "first", Style: "1A", Brewer: "a"},
				{ID: "second", Style: "2B", Brewer: "b"},
				{ID: "third", Style: "3C", Brewer: "c"},
			},
			Feedback: []model.Feedback{
				fb("first", "a", 30),
				fb("second", "b", 30),
				fb("third", "c", 30),
			},
		}

		Convey("Then ties keep registration order", func() {
			standings := ranking.Entries(snap)
			So(standings[0].Entry.ID, ShouldEqual, "first")
			So(standings[1].Entry.ID, ShouldEqual, "second")
			So(standings[2].Entry.ID, ShouldEqual, "third")
		})
	})

	Convey("Given entries with distinct averages", t, func() {
		snap := model.Snapshot{
			Entries: []model.Entry{
				{ID: "low", Style: "1A", Brewer: "a"},
				{ID: "high", Style: "2B", Brewer: "b"},
				{ID: "unscored", Style: "3C", Brewer: "c"},
			},
			Feedback: []model.Feedback{
				fb("low", "a", 20),
				fb("high", "b", 45),
			},
		}

		Convey("Then standings sort descending by average", func() {
			standings := ranking.Entries(snap)
			So(standings[0].Entry.ID, ShouldEqual, "high")
			So(standings[1].Entry.ID, ShouldEqual, "low")
			So(standings[2].Entry.ID, ShouldEqual, "unscored")
		})
	})
}

func TestBrewerStandings(t *testing.T) {
	Convey("Given a brewer with three scorecards across two entries", t, func() {
		snap := model.Snapshot{
			Entries: []model.Entry{
				{ID: "e1", Style: "10A", Brewer: "Acme Brewing"},
				{ID: "e2", Style: "21A", Brewer: "Acme Brewing"},
			},
			Feedback: []model.Feedback{
				fb("e1", "Acme Brewing", 30),
				fb("e1", "Acme Brewing", 40),
				fb("e2", "Acme Brewing", 50),
			},
		}

		Convey("When computing brewer standings", func() {
			standings := ranking.Brewers(snap)

			Convey("Then the brewer averages 40.0 over 3 reviews", func() {
				So(standings, ShouldHaveLength, 1)
				So(standings[0].Name, ShouldEqual, "Acme Brewing")
				So(standings[0].Avg, ShouldEqual, 40.0)
				So(standings[0].Reviews, ShouldEqual, 3)
			})
		})
	})

	Convey("Given feedback captured before a brewer rename", t, func() {
		// The entry now says "New Name" but the scorecards kept the name
		// current at submission time.
		snap := model.Snapshot{
			Entries: []model.Entry{{ID: "e1", Style: "1A", Brewer: "New Name"}},
			Feedback: []model.Feedback{
				fb("e1", "Old Name", 40),
			},
		}

		Convey("Then grouping uses the captured name", func() {
			standings := ranking.Brewers(snap)
			So(standings, ShouldHaveLength, 1)
			So(standings[0].Name, ShouldEqual, "Old Name")
		})
	})

	Convey("Given two brewers with different averages", t, func() {
		snap := model.Snapshot{
			Feedback: []model.Feedback{
				fb("e1", "Low Crew", 20),
				fb("e2", "High Crew", 45),
			},
		}

		Convey("Then standings sort descending by average", func() {
			standings := ranking.Brewers(snap)
			So(standings[0].Name, ShouldEqual, "High Crew")
			So(standings[1].Name, ShouldEqual, "Low Crew")
		})
	})
}

func TestFlightOrder(t *testing.T) {
	Convey("Given entries registered out of category order", t, func() {
		entries := []model.Entry{
			{ID: "a", Style: "21A. American IPA"},
			{ID: "b", Style: "1A. American Light Lager"},
			{ID: "c", Style: "Experimental Smoothie Sour"},
			{ID: "d", Style: "10A. Weissbier"},
		}

		Convey("When sorting for the flight", func() {
			ordered := ranking.FlightOrder(entries)

			Convey("Then numeric categories come first, unparseable styles last", func() {
				So(ordered[0].ID, ShouldEqual, "b")
				So(ordered[1].ID, ShouldEqual, "d")
				So(ordered[2].ID, ShouldEqual, "a")
				So(ordered[3].ID, ShouldEqual, "c")
			})

			Convey("And the input slice is untouched", func() {
				So(entries[0].ID, ShouldEqual, "a")
			})
		})
	})
}
