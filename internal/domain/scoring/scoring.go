// Package scoring defines the fixed judging rubric and score arithmetic.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ocmu/mashup/internal/domain/model"
)

// Rubric bounds. Each sub-score is an integer slider on the scorecard;
// the bounds are enforced at input time, not advisory.
const (
	MaxAroma      = 12
	MaxAppearance = 3
	MaxFlavor     = 20
	MaxMouthfeel  = 5
	MaxOverall    = 10

	// MaxTotal is the sum of all sub-score maxima.
	MaxTotal = MaxAroma + MaxAppearance + MaxFlavor + MaxMouthfeel + MaxOverall
)

// DescriptorGroups is the tasting descriptor catalog offered to judges,
// grouped by origin.
var DescriptorGroups = map[string][]string{
	"malt":        {"Bready", "Toasty", "Biscuit", "Caramel", "Chocolate", "Coffee", "Roasted", "Grainy"},
	"hops":        {"Citrus", "Pine", "Tropical", "Floral", "Herbal", "Spicy", "Earthy", "Resinous"},
	"yeast":       {"Estery", "Phenolic", "Peppery", "Clove", "Banana", "Clean", "Fruity", "Funky"},
	"off_flavors": {"Diacetyl", "DMS", "Skunky", "Acetaldehyde", "Oxidized", "Solvent", "Sour", "Metallic"},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Total returns the derived total score for a scorecard. Always computed,
// never stored.
func Total(f model.Feedback) int {
	return f.Aroma + f.Appearance + f.Flavor + f.Mouthfeel + f.Overall
}

// ValidateEntry checks the required entry fields before a mutation is
// accepted.
func ValidateEntry(e model.Entry) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, fieldErrors(err))
	}
	return nil
}

// ValidateFeedback checks required fields and rubric bounds on a
// scorecard before it is recorded.
func ValidateFeedback(f model.Feedback) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFeedback, fieldErrors(err))
	}
	return nil
}

// NormalizeDescriptors trims descriptor tags, drops empties, and
// collapses duplicates while preserving first-seen order. Descriptors
// are a set; order is irrelevant but kept stable for display.
func NormalizeDescriptors(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// fieldErrors flattens validator output into a compact message.
func fieldErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
