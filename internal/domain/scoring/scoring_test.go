package scoring_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/scoring"
)

func TestTotal(t *testing.T) {
	Convey("Given a scorecard with all five sub-scores", t, func() {
		f := model.Feedback{
			Aroma:      8,
			Appearance: 2,
			Flavor:     15,
			Mouthfeel:  4,
			Overall:    9,
		}

		Convey("Then the total is their sum", func() {
			So(scoring.Total(f), ShouldEqual, 38)
		})
	})

	Convey("Given a maxed-out scorecard", t, func() {
		f := model.Feedback{
			Aroma:      scoring.MaxAroma,
			Appearance: scoring.MaxAppearance,
			Flavor:     scoring.MaxFlavor,
			Mouthfeel:  scoring.MaxMouthfeel,
			Overall:    scoring.MaxOverall,
		}

		Convey("Then the total equals the rubric ceiling", func() {
			So(scoring.Total(f), ShouldEqual, scoring.MaxTotal)
			So(scoring.MaxTotal, ShouldEqual, 50)
		})
	})
}

func TestValidateFeedback(t *testing.T) {
	valid := model.Feedback{
		BeerID:     "beer-1",
		BrewerName: "Acme Brewing",
		JudgeName:  "Sam",
		Aroma:      10,
		Appearance: 3,
		Flavor:     18,
		Mouthfeel:  4,
		Overall:    8,
	}

	Convey("Given a well-formed scorecard", t, func() {
		So(scoring.ValidateFeedback(valid), ShouldBeNil)
	})

	Convey("Given a scorecard over the aroma ceiling", t, func() {
		f := valid
		f.Aroma = scoring.MaxAroma + 1
		err := scoring.ValidateFeedback(f)
		So(err, ShouldNotBeNil)
		So(errors.Is(err, scoring.ErrInvalidFeedback), ShouldBeTrue)
	})

	Convey("Given a negative sub-score", t, func() {
		f := valid
		f.Flavor = -1
		err := scoring.ValidateFeedback(f)
		So(errors.Is(err, scoring.ErrInvalidFeedback), ShouldBeTrue)
	})

	Convey("Given a scorecard without a judge name", t, func() {
		f := valid
		f.JudgeName = ""
		err := scoring.ValidateFeedback(f)
		So(errors.Is(err, scoring.ErrInvalidFeedback), ShouldBeTrue)
	})

	Convey("Given a scorecard without a target entry", t, func() {
		f := valid
		f.BeerID = ""
		err := scoring.ValidateFeedback(f)
		So(errors.Is(err, scoring.ErrInvalidFeedback), ShouldBeTrue)
	})
}

func TestValidateEntry(t *testing.T) {
	Convey("Given a complete entry", t, func() {
		e := model.Entry{ID: "e1", Style: "21A. American IPA", Brewer: "Acme Brewing"}
		So(scoring.ValidateEntry(e), ShouldBeNil)
	})

	Convey("Given an entry missing its style", t, func() {
		e := model.Entry{ID: "e1", Brewer: "Acme Brewing"}
		err := scoring.ValidateEntry(e)
		So(errors.Is(err, scoring.ErrInvalidEntry), ShouldBeTrue)
	})

	Convey("Given an entry missing its brewer", t, func() {
		e := model.Entry{ID: "e1", Style: "21A. American IPA"}
		err := scoring.ValidateEntry(e)
		So(errors.Is(err, scoring.ErrInvalidEntry), ShouldBeTrue)
	})
}

func TestNormalizeDescriptors(t *testing.T) {
	Convey("Given descriptor tags with duplicates and noise", t, func() {
		tags := []string{" Citrus", "Pine", "Citrus", "", "  ", "Pine", "Funky"}

		Convey("Then duplicates collapse and order of first sight holds", func() {
			So(scoring.NormalizeDescriptors(tags), ShouldResemble, []string{"Citrus", "Pine", "Funky"})
		})
	})

	Convey("Given no usable tags", t, func() {
		So(scoring.NormalizeDescriptors(nil), ShouldBeNil)
		So(scoring.NormalizeDescriptors([]string{"", " "}), ShouldBeNil)
	})
}
