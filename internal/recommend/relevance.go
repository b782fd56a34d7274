package recommend

// Relevance is computed in tenths: 5 for the persona match plus 1 per matched tag, up to 5 more.
const (
	personaMatchTenths = 5
	tagTenths          = 1
	maxTagTenths       = 5
)

// RelevanceScore maps the number of matched signal tags onto a 1-5 scale
func RelevanceScore(matchedTags int) int {
	bonus := matchedTags * tagTenths
	if bonus > maxTagTenths {
		bonus = maxTagTenths
	}
	if bonus < 0 {
		bonus = 0
	}
	raw := personaMatchTenths + bonus

	switch {
	case raw < 2:
		return 1
	case raw < 4:
		return 2
	case raw < 6:
		return 3
	case raw < 8:
		return 4
	default:
		return 5
	}
}
