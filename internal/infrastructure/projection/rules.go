package projection

import "strings"

// Derivation is rule-table driven: each attribute is an ordered list of
// (substring, value) rules evaluated first-match-wins over lower-cased
// text, so priority stays explicit and testable. Every attribute has a
// default for text that carries no signal.

type rule struct {
	match string
	value string
}

func firstMatch(text string, rules []rule, fallback string) string {
	for _, r := range rules {
		if strings.Contains(text, r.match) {
			return r.value
		}
	}
	return fallback
}

// Texture defaults to "medium"; an empty description yields "unknown".
// "soft" outranks "creamy" so a soft creamy cheese reads as soft.
var textureRules = []rule{
	{"soft", "soft"},
	{"firm", "firm"},
	{"hard", "firm"},
	{"creamy", "creamy"},
	{"crumbly", "crumbly"},
}

func extractTexture(description string) string {
	if description == "" {
		return "unknown"
	}
	return firstMatch(strings.ToLower(description), textureRules, "medium")
}

// Color checks multi-word shades before their single-word prefixes, then
// infers from cheese families. Defaults to "varied"; empty is "unknown".
var colorRules = []rule{
	{"pale yellow", "pale yellow"},
	{"off-white", "pale yellow"},
	{"ivory", "pale yellow"},
	{"white", "white"},
	{"golden", "yellow"},
	{"orange", "orange"},
	{"yellow", "yellow"},
	{"cream", "cream"},
	{"blue", "blue-veined"},
	{"cheddar", "yellow to orange"},
	{"mozzarella", "white"},
	{"parmesan", "pale yellow"},
	{"gouda", "yellow"},
	{"swiss", "pale yellow"},
}

func extractColor(description string) string {
	if description == "" {
		return "unknown"
	}
	return firstMatch(strings.ToLower(description), colorRules, "varied")
}

// Flavor keywords: "nutty" outranks "mild" so "mild nutty flavor" keeps
// the more specific note. Empty text falls back to the mild default.
var flavorRules = []rule{
	{"sharp", "a sharp, tangy flavor profile"},
	{"nutty", "a nutty, slightly sweet flavor profile"},
	{"mild", "a mild, subtle flavor profile"},
	{"tangy", "a tangy, bright flavor profile"},
	{"smoky", "a smoky, savory flavor profile"},
}

func extractFlavorProfile(description string) string {
	if description == "" {
		return "a mild, creamy flavor profile"
	}
	return firstMatch(strings.ToLower(description), flavorRules, "a balanced flavor profile typical of this cheese variety")
}

// Origin: explicit country mentions first, cheese families second.
var originRules = []rule{
	{"italian", "Italy"},
	{"italy", "Italy"},
	{"french", "France"},
	{"france", "France"},
	{"swiss", "Switzerland"},
	{"switzerland", "Switzerland"},
	{"greek", "Greece"},
	{"greece", "Greece"},
	{"spanish", "Spain"},
	{"spain", "Spain"},
	{"dutch", "Netherlands"},
	{"holland", "Netherlands"},
	{"netherlands", "Netherlands"},
	{"english", "England"},
	{"england", "England"},
	{"british", "England"},
	{"american", "United States"},
	{"united states", "United States"},
	{"usa", "United States"},
	{"parmesan", "Italy"},
	{"parmigiano", "Italy"},
	{"mozzarella", "Italy"},
	{"ricotta", "Italy"},
	{"provolone", "Italy"},
	{"brie", "France"},
	{"camembert", "France"},
	{"roquefort", "France"},
	{"feta", "Greece"},
	{"manchego", "Spain"},
	{"gouda", "Netherlands"},
	{"edam", "Netherlands"},
	{"cheddar", "England"},
	{"stilton", "England"},
	{"monterey", "United States"},
	{"jack", "United States"},
}

func extractOrigin(title, description string) string {
	combined := strings.ToLower(title + " " + description)
	if strings.TrimSpace(combined) == "" {
		return "unknown"
	}
	return firstMatch(combined, originRules, "unknown")
}

// Milk type: explicit mentions, then family inference, then the common-cow
// default for well-known cow's-milk varieties. "likely cow" otherwise.
var milkRules = []rule{
	{"plant-based", "plant-based"},
	{"vegan", "plant-based"},
	{"non-dairy", "plant-based"},
	{"buffalo", "buffalo"},
	{"goat", "goat"},
	{"sheep", "sheep"},
	{"ewe", "sheep"},
	{"cow", "cow"},
	{"feta", "sheep and goat blend"},
	{"roquefort", "sheep"},
	{"chevre", "goat"},
	{"pecorino", "sheep"},
	{"manchego", "sheep"},
	{"cheddar", "cow"},
	{"swiss", "cow"},
	{"american", "cow"},
	{"brie", "cow"},
	{"camembert", "cow"},
	{"parmesan", "cow"},
	{"gouda", "cow"},
	{"edam", "cow"},
}

func extractMilkType(title, description string) string {
	combined := strings.ToLower(title + " " + description)
	if strings.TrimSpace(combined) == "" {
		return "unknown"
	}
	return firstMatch(combined, milkRules, "likely cow")
}

var keywordFamilies = []string{
	"cheddar", "mozzarella", "parmesan", "parmigiano", "ricotta", "provolone",
	"gouda", "edam", "swiss", "brie", "camembert", "roquefort", "gorgonzola",
	"feta", "manchego", "pecorino", "monterey", "jack", "american", "blue",
	"cream cheese",
}

func extractKeywords(title, description string) []string {
	combined := strings.ToLower(title + " " + description)
	keywords := make([]string, 0, 4)
	for _, family := range keywordFamilies {
		if strings.Contains(combined, family) {
			keywords = append(keywords, family)
		}
	}
	return keywords
}

var useCasesByFamily = []struct {
	family string
	uses   []string
}{
	{"mozzarella", []string{"pizza", "caprese salad", "lasagna", "pasta dishes"}},
	{"cheddar", []string{"sandwiches", "burgers", "mac and cheese", "soups"}},
	{"parmesan", []string{"pasta topping", "risotto", "caesar salad", "grating over dishes"}},
	{"parmigiano", []string{"pasta topping", "risotto", "caesar salad", "grating over dishes"}},
	{"ricotta", []string{"lasagna", "cannoli", "cheesecake", "stuffed pasta"}},
	{"gorgonzola", []string{"salad topping", "dips", "steak topping", "cheese boards"}},
	{"blue", []string{"salad topping", "dips", "steak topping", "cheese boards"}},
	{"feta", []string{"greek salad", "pastries", "roasted vegetables", "mediterranean dishes"}},
	{"american", []string{"burgers", "grilled cheese", "sandwiches", "melting applications"}},
	{"swiss", []string{"sandwiches", "fondue", "gratins", "quiche"}},
	{"cream cheese", []string{"bagels", "cheesecake", "frosting", "dips"}},
	{"monterey", []string{"mexican dishes", "quesadillas", "burgers", "sandwiches"}},
	{"jack", []string{"mexican dishes", "quesadillas", "burgers", "sandwiches"}},
}

var useCasesByCategory = []struct {
	category string
	uses     []string
}{
	{"shredded", []string{"topping", "melting", "baking"}},
	{"sliced", []string{"sandwiches", "burgers", "wraps"}},
	{"specialty", []string{"cheese boards", "appetizers", "wine pairing"}},
}

var defaultUseCases = []string{"cheese boards", "cooking", "sandwiches", "various recipes"}

// suggestUseCases collects family- and category-based uses, deduplicated in
// first-seen order and capped at five. The fixed order keeps projection
// deterministic across runs.
func suggestUseCases(title string, categories []string) []string {
	titleLower := strings.ToLower(title)
	collected := make([]string, 0, 8)

	for _, entry := range useCasesByFamily {
		if strings.Contains(titleLower, entry.family) {
			collected = append(collected, entry.uses...)
			break
		}
	}
	for _, category := range categories {
		categoryLower := strings.ToLower(category)
		for _, entry := range useCasesByCategory {
			if strings.Contains(categoryLower, entry.category) {
				collected = append(collected, entry.uses...)
			}
		}
	}

	unique := make([]string, 0, 5)
	seen := make(map[string]bool, len(collected))
	for _, use := range collected {
		if seen[use] {
			continue
		}
		seen[use] = true
		unique = append(unique, use)
		if len(unique) == 5 {
			break
		}
	}
	if len(unique) == 0 {
		return append([]string(nil), defaultUseCases...)
	}
	return unique
}

var pairingRules = []rule{
	{"cheddar", "apples, pears, bread, or a robust red wine"},
	{"mozzarella", "tomatoes, basil, olive oil, or a light white wine"},
	{"parmesan", "pasta dishes, salads, or a medium-bodied red wine"},
	{"blue", "honey, figs, walnuts, or a sweet dessert wine"},
	{"brie", "baguette, grapes, or a crisp sparkling wine"},
}

func suggestPairings(categories []string) string {
	if len(categories) == 0 {
		return "crackers, fruit, or wine"
	}
	combined := strings.ToLower(strings.Join(categories, " "))
	return firstMatch(combined, pairingRules, "crackers, fruit, bread, or wine depending on your preference")
}

var meltingDishes = map[string]string{
	"mozzarella": "pizza, lasagna, or grilled cheese sandwiches",
	"cheddar":    "mac and cheese, burgers, or quiche",
	"american":   "burgers, grilled cheese sandwiches, or quesadillas",
	"swiss":      "fondue, hot sandwiches, or gratins",
}

var meltingFamilies = []string{
	"mozzarella", "cheddar", "american", "monterey", "jack", "swiss", "gouda", "provolone",
}

func describeMelting(title, description string) string {
	combined := strings.ToLower(title + " " + description)
	for _, family := range meltingFamilies {
		if strings.Contains(combined, family) {
			dishes, ok := meltingDishes[family]
			if !ok {
				dishes = "various hot dishes and sandwiches"
			}
			return "Yes, this cheese is excellent for melting and works well in dishes like " + dishes
		}
	}
	return "Based on the information available, it's difficult to determine its melting properties, but you could experiment with it in cooked dishes"
}

var storageRules = []rule{
	{"fresh", "in the refrigerator in an airtight container and consumed within a week"},
	{"ricotta", "in the refrigerator in an airtight container and consumed within a week"},
	{"cottage", "in the refrigerator in an airtight container and consumed within a week"},
	{"cream", "in the refrigerator in an airtight container and consumed within a week"},
	{"brie", "in the refrigerator wrapped in cheese paper or wax paper, and brought to room temperature before serving"},
	{"camembert", "in the refrigerator wrapped in cheese paper or wax paper, and brought to room temperature before serving"},
	{"parmesan", "in the refrigerator wrapped in cheese paper or wax paper, which allows it to breathe while preventing it from drying out"},
	{"aged", "in the refrigerator wrapped in cheese paper or wax paper, which allows it to breathe while preventing it from drying out"},
	{"hard", "in the refrigerator wrapped in cheese paper or wax paper, which allows it to breathe while preventing it from drying out"},
	{"blue", "in the refrigerator wrapped in foil to prevent the mold from spreading to other foods"},
	{"gorgonzola", "in the refrigerator wrapped in foil to prevent the mold from spreading to other foods"},
	{"roquefort", "in the refrigerator wrapped in foil to prevent the mold from spreading to other foods"},
}

func suggestStorage(categories []string) string {
	if len(categories) == 0 {
		return "in the refrigerator in its original packaging or wrapped in cheese paper"
	}
	combined := strings.ToLower(strings.Join(categories, " "))
	return firstMatch(combined, storageRules,
		"in the refrigerator in its original packaging or wrapped in cheese paper, and ideally brought to room temperature before serving")
}
