package projection

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

func TestDeriveSoftCreamyItalianNutty(t *testing.T) {
	item := domain.CatalogItem{
		UPC:         "123456789012",
		Title:       "Imported Italian Cheese",
		Description: "a soft, creamy Italian cheese with a mild nutty flavor",
	}
	derived := New().Derive(item)

	if derived.Texture != "soft" {
		t.Errorf("texture = %q", derived.Texture)
	}
	if derived.Origin != "Italy" {
		t.Errorf("origin = %q", derived.Origin)
	}
	if !strings.Contains(derived.FlavorProfile, "nutty") {
		t.Errorf("flavor = %q", derived.FlavorProfile)
	}
}

func TestDeriveDefaultsForPlainText(t *testing.T) {
	derived := New().Derive(domain.CatalogItem{
		UPC:         "1",
		Title:       "Store Brand Cheese Product",
		Description: "a cheese product",
	})

	if derived.Texture != "medium" {
		t.Errorf("texture = %q", derived.Texture)
	}
	if derived.Color != "varied" {
		t.Errorf("color = %q", derived.Color)
	}
	if derived.Origin != "unknown" {
		t.Errorf("origin = %q", derived.Origin)
	}
	if derived.MilkType != "likely cow" {
		t.Errorf("milk type = %q", derived.MilkType)
	}
}

func TestDeriveEmptyDescription(t *testing.T) {
	derived := New().Derive(domain.CatalogItem{UPC: "1", Title: ""})

	if derived.Texture != "unknown" || derived.Color != "unknown" {
		t.Errorf("texture=%q color=%q", derived.Texture, derived.Color)
	}
	if derived.FlavorProfile != "a mild, creamy flavor profile" {
		t.Errorf("flavor = %q", derived.FlavorProfile)
	}
}

func TestDeriveFamilyInference(t *testing.T) {
	derived := New().Derive(domain.CatalogItem{
		UPC:         "1",
		Title:       "Feta Crumbles",
		Description: "crumbly and tangy",
	})

	if derived.Origin != "Greece" {
		t.Errorf("origin = %q", derived.Origin)
	}
	if derived.MilkType != "sheep and goat blend" {
		t.Errorf("milk type = %q", derived.MilkType)
	}
}

func TestSuggestUseCasesCappedAndDeterministic(t *testing.T) {
	first := suggestUseCases("Shredded Mozzarella", []string{"Shredded Cheese", "Sliced Cheese"})
	second := suggestUseCases("Shredded Mozzarella", []string{"Shredded Cheese", "Sliced Cheese"})

	if len(first) > 5 {
		t.Fatalf("use cases exceed cap: %v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not deterministic: %v vs %v", first, second)
	}
	if first[0] != "pizza" {
		t.Errorf("family uses must come first: %v", first)
	}
}

func TestSuggestUseCasesDefault(t *testing.T) {
	uses := suggestUseCases("Mystery Cheese", nil)
	if !reflect.DeepEqual(uses, []string{"cheese boards", "cooking", "sandwiches", "various recipes"}) {
		t.Errorf("uses = %v", uses)
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	item := domain.CatalogItem{
		UPC:          "123456789012",
		SKU:          "SKU-1",
		Title:        "Aged Cheddar",
		Brand:        "Westland",
		Description:  "a firm aged cheddar with sharp notes",
		Categories:   []string{"Cheese", "Aged"},
		PricePerUnit: 12.5,
		EachWeight:   1.0,
	}
	projector := New()

	row1, entry1 := projector.Project(item)
	row2, entry2 := projector.Project(item)

	if !reflect.DeepEqual(row1, row2) {
		t.Error("attribute rows differ between projections")
	}
	if entry1.ID != entry2.ID || entry1.Text != entry2.Text {
		t.Error("vector entries differ between projections")
	}
	if entry1.ID != "item-123456789012" {
		t.Errorf("entry id = %q", entry1.ID)
	}
}

func TestProjectFlattensCategories(t *testing.T) {
	row, entry := New().Project(domain.CatalogItem{
		UPC:        "1",
		Title:      "Aged Cheddar",
		Categories: []string{"Cheese", "Aged", "Imported"},
	})

	if row.Category != "Cheese" || row.Subcategory != "Aged" {
		t.Errorf("category=%q subcategory=%q", row.Category, row.Subcategory)
	}
	if row.AllCategories != "Cheese,Aged,Imported" {
		t.Errorf("all categories = %q", row.AllCategories)
	}
	if entry.Metadata["all_categories"] != "Cheese,Aged,Imported" {
		t.Errorf("metadata all_categories = %v", entry.Metadata["all_categories"])
	}
}

func TestProjectMetadataIsScalarOnly(t *testing.T) {
	_, entry := New().Project(domain.CatalogItem{
		UPC:        "1",
		Title:      "Aged Cheddar",
		Categories: []string{"Cheese"},
		ImageURLs:  []string{"https://a", "https://b"},
	})

	for key, value := range entry.Metadata {
		switch value.(type) {
		case string, float64:
		default:
			t.Errorf("metadata %q has non-scalar value %T", key, value)
		}
	}
	if entry.Metadata["image_urls"] != "https://a,https://b" {
		t.Errorf("image_urls = %v", entry.Metadata["image_urls"])
	}
}

func TestConversationalTextMentionsCoreFacets(t *testing.T) {
	item := domain.CatalogItem{
		UPC:         "1",
		Title:       "Aged Cheddar",
		Brand:       "Westland",
		Description: "a firm aged cheddar with sharp notes",
		Categories:  []string{"Cheese"},
		EachPrice:   8.99,
		EachWeight:  0.5,
	}
	text := buildConversationalText(item, New().Derive(item))

	for _, want := range []string{
		"Aged Cheddar",
		"Westland",
		"$8.99 each",
		"0.5 lb",
		"taste like",
		"pair this cheese",
		"good for melting",
		"store this cheese",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
}

func TestDescribePricePrecedence(t *testing.T) {
	cases := []struct {
		item domain.CatalogItem
		want string
	}{
		{domain.CatalogItem{EachPrice: 8.99, CasePrice: 50}, "$8.99 each"},
		{domain.CatalogItem{CasePrice: 50, PricePerUnit: 5}, "$50.00 per case"},
		{domain.CatalogItem{PricePerUnit: 5}, "$5.00 per unit"},
		{domain.CatalogItem{}, "various prices"},
	}
	for _, tc := range cases {
		if got := describePrice(tc.item); got != tc.want {
			t.Errorf("describePrice(%+v) = %q, want %q", tc.item, got, tc.want)
		}
	}
}

func TestDescribeMelting(t *testing.T) {
	got := describeMelting("Shredded Mozzarella", "")
	if !strings.Contains(got, "excellent for melting") || !strings.Contains(got, "pizza") {
		t.Errorf("melting = %q", got)
	}

	got = describeMelting("Mystery Cheese", "no known family")
	if !strings.Contains(got, "difficult to determine") {
		t.Errorf("melting = %q", got)
	}
}

func TestSuggestStorageByFamily(t *testing.T) {
	got := suggestStorage([]string{"Blue Cheese"})
	if !strings.Contains(got, "foil") {
		t.Errorf("storage = %q", got)
	}

	got = suggestStorage(nil)
	if !strings.Contains(got, "original packaging") {
		t.Errorf("storage = %q", got)
	}
}
