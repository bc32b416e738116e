package rejection

import "regexp"

// Rejection text frequently names drug codes inline, e.g. "duplication with
// 06285096001065" or ranged codes like "845-02.1". Dotted and dashed
// segments are part of the code.
var drugCodePattern = regexp.MustCompile(`\d+(?:\.\d+)?(?:-\d+(?:\.\d+)?){0,2}`)

// ExtractDrugCodes pulls the distinct drug codes mentioned in a rejection
// reason, preserving first-seen order.
func ExtractDrugCodes(text string) []string {
	seen := make(map[string]struct{})
	var codes []string
	for _, code := range drugCodePattern.FindAllString(text, -1) {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
