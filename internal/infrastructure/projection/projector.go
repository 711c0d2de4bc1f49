package projection

import (
	"encoding/json"
	"strings"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

// Projector derives both store projections from a raw catalog item. All
// derivation is pure string matching: projecting the same item twice
// yields identical output, including the vector ID.
type Projector struct{}

func New() *Projector {
	return &Projector{}
}

// Derive computes the derived attributes alone. Exposed for tests and for
// callers that only need the enrichment.
func (p *Projector) Derive(item domain.CatalogItem) domain.DerivedAttributes {
	return domain.DerivedAttributes{
		Texture:       extractTexture(item.Description),
		Color:         extractColor(item.Description),
		FlavorProfile: extractFlavorProfile(item.Description),
		MilkType:      extractMilkType(item.Title, item.Description),
		Origin:        extractOrigin(item.Title, item.Description),
		UseCases:      suggestUseCases(item.Title, item.Categories),
		Keywords:      extractKeywords(item.Title, item.Description),
		Pairings:      suggestPairings(item.Categories),
		Melting:       describeMelting(item.Title, item.Description),
		Storage:       suggestStorage(item.Categories),
	}
}

func (p *Projector) Project(item domain.CatalogItem) (domain.AttributeRow, domain.VectorEntry) {
	derived := p.Derive(item)
	category, subcategory, allCategories := flattenCategories(item.Categories)
	vectorID := "item-" + item.UPC

	row := domain.AttributeRow{
		UPC:           item.UPC,
		SKU:           item.SKU,
		Title:         item.Title,
		Description:   item.Description,
		Brand:         item.Brand,
		Origin:        derived.Origin,
		Color:         derived.Color,
		Texture:       derived.Texture,
		PricePerUnit:  item.PricePerUnit,
		CasePrice:     item.CasePrice,
		EachPrice:     item.EachPrice,
		EachWeight:    item.EachWeight,
		CaseWeight:    item.CaseWeight,
		MilkType:      derived.MilkType,
		FlavorProfile: derived.FlavorProfile,
		Category:      category,
		Subcategory:   subcategory,
		AllCategories: allCategories,
		ImageURLs:     mustJSONList(item.ImageURLs),
		URL:           item.URL,
		RelatedItems:  mustJSONList(item.RelatedItems),
		UseCases:      mustJSONList(derived.UseCases),
		Keywords:      mustJSONList(derived.Keywords),
		VectorID:      vectorID,
	}

	entry := domain.VectorEntry{
		ID:       vectorID,
		Text:     buildConversationalText(item, derived),
		Metadata: buildMetadata(item, derived, category, subcategory, allCategories),
	}
	return row, entry
}

// buildMetadata flattens everything to scalars: the vector store accepts
// only scalar or string metadata values.
func buildMetadata(
	item domain.CatalogItem,
	derived domain.DerivedAttributes,
	category, subcategory, allCategories string,
) map[string]any {
	return map[string]any{
		"upc":            item.UPC,
		"sku":            item.SKU,
		"title":          item.Title,
		"brand":          item.Brand,
		"url":            item.URL,
		"category":       category,
		"subcategory":    subcategory,
		"all_categories": allCategories,
		"price_per_unit": item.PricePerUnit,
		"case_price":     item.CasePrice,
		"each_price":     item.EachPrice,
		"each_weight":    item.EachWeight,
		"case_weight":    item.CaseWeight,
		"origin":         derived.Origin,
		"color":          derived.Color,
		"texture":        derived.Texture,
		"milk_type":      derived.MilkType,
		"flavor_profile": derived.FlavorProfile,
		"use_cases":      strings.Join(derived.UseCases, ","),
		"keywords":       strings.Join(derived.Keywords, ","),
		"image_urls":     strings.Join(item.ImageURLs, ","),
		"related_items":  strings.Join(item.RelatedItems, ","),
	}
}

func flattenCategories(categories []string) (category, subcategory, all string) {
	if len(categories) == 0 {
		return "", "", ""
	}
	category = categories[0]
	if len(categories) > 1 {
		subcategory = categories[1]
	}
	return category, subcategory, strings.Join(categories, ",")
}

// mustJSONList serializes a string list for a TEXT column. Marshalling a
// []string cannot fail; an empty list serializes as [] rather than null.
func mustJSONList(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}
