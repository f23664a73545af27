package models

// Category is the vendor category of a decision item.
type Category string

const (
	CategoryLead     Category = "lead"
	CategoryVenue    Category = "venue"
	CategoryCatering Category = "catering"
	CategoryPhoto    Category = "photo"
	CategoryFlorals  Category = "florals"
	CategoryMusic    Category = "music"
	CategoryRentals  Category = "rentals"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryLead,
	CategoryVenue,
	CategoryCatering,
	CategoryPhoto,
	CategoryFlorals,
	CategoryMusic,
	CategoryRentals,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Option is a priced vendor choice. It is embedded by value in decision items
// so a later catalog price change never rewrites history.
type Option struct {
	ID         string   `json:"id" binding:"required,max=100"`
	Name       string   `json:"name" binding:"required,max=200"`
	PriceCents int64    `json:"price_cents" binding:"gte=0,lte=1000000000000"`
	Tags       []string `json:"tags" binding:"omitempty,max=20,dive,style_tag"`
	Reasons    []string `json:"reasons" binding:"omitempty,max=20,dive,max=100"`
}

// SharesTag reports whether o carries at least one of tags.
func (o Option) SharesTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range o.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
