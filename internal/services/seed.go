package services

import (
	"regexp"
	"strings"

	"gorm.io/datatypes"

	"weddingbudget/internal/models"
)

// seedCategory is one default line of a new plan.
type seedCategory struct {
	Category models.Category
	Impact   int
	Options  []models.VendorOption
}

var whitespace = regexp.MustCompile(`\s+`)

// slug derives a catalog id from a display name.
func slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}

func vendor(name string, priceCents int64, tags, reasons []string) models.VendorOption {
	return models.VendorOption{
		ID:         slug(name),
		Name:       name,
		PriceCents: priceCents,
		Tags:       datatypes.NewJSONSlice(tags),
		Reasons:    datatypes.NewJSONSlice(reasons),
		IsActive:   true,
	}
}

func seedLine(category models.Category, impact int, opts ...models.VendorOption) seedCategory {
	for i := range opts {
		opts[i].Category = category
		opts[i].SortOrder = i
	}
	return seedCategory{Category: category, Impact: impact, Options: opts}
}

// defaultLines are the lines every new plan starts with. The first option of
// each line is the initial selection and the rest become alternates.
var defaultLines = []seedCategory{
	seedLine(models.CategoryLead, 10,
		vendor("Day-of Coordinator", 250_000, []string{"planner"}, []string{"Availability↑"}),
		vendor("Coordinator Lite", 150_000, []string{"planner"}, []string{"Price↓"}),
	),
	seedLine(models.CategoryVenue, 9,
		vendor("Garden Loft", 1_200_000, []string{"garden", "modern"}, []string{"Price↓", "Vibe≈"}),
		vendor("Historic Hall", 1_500_000, []string{"historic"}, []string{"Availability↑", "Vibe≈"}),
		vendor("Riverside Pavilion", 1_000_000, []string{"modern"}, []string{"Price↓"}),
	),
	seedLine(models.CategoryFlorals, 7,
		vendor("Green Ivy", 300_000, []string{"garden"}, []string{"Vibe≈"}),
		vendor("Petal & Stem", 220_000, []string{"modern"}, []string{"Price↓"}),
		vendor("Bloom Atelier", 400_000, []string{"historic"}, []string{"Availability↑"}),
	),
	seedLine(models.CategoryPhoto, 6,
		vendor("Studio Verve", 350_000, []string{"modern"}, []string{"Vibe≈"}),
		vendor("Light & Lace", 280_000, []string{"garden"}, []string{"Price↓"}),
		vendor("Silver Grain", 420_000, []string{"historic"}, []string{"Availability↑"}),
	),
	seedLine(models.CategoryMusic, 5,
		vendor("Velvet Quartet", 260_000, []string{"historic"}, []string{"Vibe≈"}),
		vendor("Sunset DJ", 180_000, []string{"modern"}, []string{"Price↓"}),
		vendor("City Swing Band", 320_000, []string{"garden"}, []string{"Availability↑"}),
	),
	seedLine(models.CategoryRentals, 4,
		vendor("Luxe Linen Set", 200_000, []string{"modern"}, []string{"Vibe≈"}),
		vendor("Classic Chairs", 150_000, []string{"historic"}, []string{"Price↓"}),
		vendor("Garden Mix", 170_000, []string{"garden"}, []string{"Availability↑"}),
	),
}

// SeedCatalog returns the built-in catalog entries behind the default lines.
func SeedCatalog() []models.VendorOption {
	var out []models.VendorOption
	for _, line := range defaultLines {
		out = append(out, line.Options...)
	}
	return out
}

// defaultSummary is the preference summary of a freshly created plan.
func defaultSummary() models.PlanSummary {
	return models.PlanSummary{BaselineBudgetCents: 3_200_000}
}

func defaultDateWindows() []models.DateWindow {
	return []models.DateWindow{
		{Label: "May–Jun", Score: 0.8},
		{Label: "Sep–Oct", Score: 0.9},
	}
}

// seedItem builds the decision item for one line from catalog entries in
// sort order.
func seedItem(category models.Category, impact int, opts []models.VendorOption) (models.DecisionItem, bool) {
	if len(opts) == 0 {
		return models.DecisionItem{}, false
	}
	item := models.DecisionItem{Category: category, ImpactScore: impact, Status: models.DecisionStatusPending}
	item.SetSelected(opts[0].Snapshot())
	alts := make([]models.Option, 0, len(opts)-1)
	for i := range opts[1:] {
		alts = append(alts, opts[1+i].Snapshot())
	}
	item.SetAlternates(alts)
	return item, true
}
