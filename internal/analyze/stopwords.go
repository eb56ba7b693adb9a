package analyze

// stopwords excluded from term-density scoring and duplicate detection.
var stopwords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true,
	"an": true, "and": true, "any": true, "are": true, "as": true,
	"at": true, "be": true, "because": true, "been": true, "but": true,
	"by": true, "can": true, "could": true, "did": true, "do": true,
	"does": true, "for": true, "from": true, "get": true, "go": true,
	"going": true, "got": true, "had": true, "has": true, "have": true,
	"he": true, "her": true, "here": true, "him": true, "his": true,
	"how": true, "i": true, "if": true, "in": true, "into": true,
	"is": true, "it": true, "its": true, "just": true, "like": true,
	"me": true, "more": true, "most": true, "my": true, "no": true,
	"not": true, "now": true, "of": true, "on": true, "one": true,
	"or": true, "our": true, "out": true, "over": true, "really": true,
	"right": true, "said": true, "say": true, "she": true, "so": true,
	"some": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"thing": true, "things": true, "this": true, "those": true, "to": true,
	"too": true, "up": true, "us": true, "very": true, "want": true,
	"was": true, "we": true, "well": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "will": true,
	"with": true, "would": true, "you": true, "your": true,
}
