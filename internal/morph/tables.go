package morph

import "github.com/nao1215/verbcrawl/internal/model"

// DefaultPrefixes returns the built-in prefix table, grouped as path,
// goal and source prefixes followed by po-. Each call returns a new table.
func DefaultPrefixes() model.RuleTable {
	return model.RuleTable{
		// path/location
		{ID: "o-", Variants: []string{"о", "об", "обо", "объ"}},
		{ID: "nad-", Variants: []string{"над", "надо", "надъ"}},
		{ID: "pere-", Variants: []string{"пере", "пре", "прѣ"}},
		{ID: "pro-", Variants: []string{"про"}},
		{ID: "u-", Variants: []string{"у"}},
		{ID: "na-", Variants: []string{"на"}},
		// goal
		{ID: "v-", Variants: []string{"в", "во", "въ"}},
		{ID: "pri-", Variants: []string{"при"}},
		{ID: "za-", Variants: []string{"за"}},
		{ID: "do-", Variants: []string{"до"}},
		{ID: "s-", Variants: []string{"с", "со", "съ"}},
		// source
		{ID: "iz-", Variants: []string{"из", "изо", "изъ"}},
		{ID: "vy-", Variants: []string{"вы"}},
		{ID: "ot-", Variants: []string{"от", "ото", "отъ"}},
		{ID: "voz-", Variants: []string{"вз", "вс", "воз", "вос", "взо", "взъ", "возъ"}},
		{ID: "raz-", Variants: []string{"раз", "рас", "разо", "разъ"}},
		{ID: "po-", Variants: []string{"по"}},
	}
}

// DefaultEndings returns the built-in aorist endings. The empty post-vowel
// ending yields the bare stem (2nd/3rd person singular).
func DefaultEndings() Endings {
	return Endings{
		PostVowel:     []string{"хъ", "", "ховѣ", "ста", "хомъ", "сте", "ша"},
		PostConsonant: []string{"охъ", "е", "оховѣ", "оста", "охомъ", "осте", "оша"},
	}
}
