package lookup

import (
	"regexp"
	"strings"
)

var (
	latinOnly       = regexp.MustCompile(`^[A-Za-z\s\-'.]+$`)
	ukrainianLetter = regexp.MustCompile(`[іїєґІЇЄҐ]`)
	cyrillicLetter  = regexp.MustCompile(`\p{Cyrillic}`)
)

// Plan is the order in which a query is resolved.
type Plan struct {
	// Locales are tried in order; only the last one reports its failure.
	Locales []string
	// LocalFirst checks the cached catalog before any network call.
	LocalFirst bool
}

// Classify picks the encyclopedia locales for query from the script it is written in.
func Classify(query string) Plan {
	switch {
	case latinOnly.MatchString(query):
		return Plan{Locales: []string{"en"}, LocalFirst: true}
	case ukrainianLetter.MatchString(query):
		return Plan{Locales: []string{"uk"}}
	case cyrillicLetter.MatchString(query):
		return Plan{Locales: []string{"ru", "uk"}}
	default:
		return Plan{Locales: []string{"en"}}
	}
}

var breedKeywords = regexp.MustCompile(`(?i)собак|порода|охота|дичь|мисливськ|canine|breed|dog`)

// ambiguousNames are breed names whose articles may not mention dogs in the
// opening paragraph, or whose title is shared with a non-dog subject. Russian
// and English forms are paired; the rest are Ukrainian or alternate spellings.
var ambiguousNames = newNameSet(
	"шпиц", "spitz",
	"лайка", "laika",
	"дог", "dog",
	"бульдог", "bulldog",
	"терьер", "terrier",
	"пинчер", "pinscher",
	"пудель", "poodle",
	"корги", "corgi",
	"колли", "collie",
	"овчарка", "shepherd",
	"мастиф", "mastiff",
	"чихуахуа", "chihuahua",
	"бигль", "beagle",
	"акита", "akita",
	"ретривер", "retriever",
	"лабрадор", "labrador",
	"хаски", "husky",
	"такса", "dachshund",
	"доберман", "doberman",
	"шарпей", "sharpei",
	"самоед", "samoyed",
	"шелти", "sheltie",
	"мопс", "pug",
	"грейхаунд", "greyhound",
	"сенбернар", "saint bernard",
	"спаниель", "spaniel",

	"basenji",
	"boxer",
	"боксер",
	"боксёр",
	"pointer",
	"setter",
	"shiba inu",
	"сиба-ину",
	"лабрадор-ретривер",
	"вівчарка",
	"тер'єр",
	"спанієль",
)

func newNameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// LooksLikeBreed reports whether an article about query plausibly describes a dog breed.
func LooksLikeBreed(query, extract string) bool {
	if breedKeywords.MatchString(extract) {
		return true
	}
	_, ok := ambiguousNames[strings.ToLower(strings.TrimSpace(query))]
	return ok
}
