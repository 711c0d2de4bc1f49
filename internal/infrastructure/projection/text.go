package projection

import (
	"fmt"
	"strings"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

// buildConversationalText renders the payload stored in the vector index.
// The template always mentions price, weight, flavor, pairing, melting,
// and storage, because attribute-style questions ("good for melting")
// only rank well when those phrases are present in the embedded text.
func buildConversationalText(item domain.CatalogItem, derived domain.DerivedAttributes) string {
	var b strings.Builder

	title := item.Title
	if title == "" {
		title = "a cheese product"
	}
	brand := item.Brand
	if brand == "" {
		brand = "an unknown brand"
	}
	categoryText := "cheese"
	if len(item.Categories) > 0 {
		categoryText = strings.Join(item.Categories, ", ")
	}

	fmt.Fprintf(&b, "This is %s, a %s from %s. ", title, categoryText, brand)
	fmt.Fprintf(&b, "You can purchase it for %s per %s. ", describePrice(item), describeWeight(item))
	if item.Description != "" {
		fmt.Fprintf(&b, "Physical description: %s ", item.Description)
	}

	fmt.Fprintf(&b, "Q: What does this cheese taste like? A: This cheese likely has %s. ", derived.FlavorProfile)
	fmt.Fprintf(&b, "Q: What can I pair this cheese with? A: This type of cheese would pair well with %s. ", derived.Pairings)
	fmt.Fprintf(&b, "Q: Is this cheese good for melting? A: %s. ", derived.Melting)
	fmt.Fprintf(&b, "Q: How should I store this cheese? A: Generally, this type of cheese should be stored %s.", derived.Storage)

	return b.String()
}

func describePrice(item domain.CatalogItem) string {
	switch {
	case item.EachPrice > 0:
		return fmt.Sprintf("$%.2f each", item.EachPrice)
	case item.CasePrice > 0:
		return fmt.Sprintf("$%.2f per case", item.CasePrice)
	case item.PricePerUnit > 0:
		return fmt.Sprintf("$%.2f per unit", item.PricePerUnit)
	default:
		return "various prices"
	}
}

func describeWeight(item domain.CatalogItem) string {
	switch {
	case item.EachWeight > 0:
		return fmt.Sprintf("%.1f lb", item.EachWeight)
	case item.CaseWeight > 0:
		return fmt.Sprintf("a %.1f lb case", item.CaseWeight)
	default:
		return "unit"
	}
}
