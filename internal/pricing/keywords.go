package pricing

import "strings"

// keywordBuckets maps issue-description terms (English, Italian, Chinese) to
// catalog category names. Liquid damage is routed to board repair, which
// covers water intrusion.
var keywordBuckets = []struct {
	category string
	terms    []string
}{
	{"屏幕维修", []string{"screen", "display", "schermo", "屏幕", "显示"}},
	{"电池更换", []string{"battery", "batteria", "电池", "续航"}},
	{"主板维修", []string{"water", "liquid", "acqua", "进水", "motherboard", "logic board", "scheda madre", "主板"}},
}

// ClassifyIssue picks a repair category name from a free-text issue
// description. Unknown issues fall into the general diagnosis bucket.
func ClassifyIssue(issueDescription string) string {
	text := strings.ToLower(issueDescription)
	for _, bucket := range keywordBuckets {
		for _, term := range bucket.terms {
			if strings.Contains(text, term) {
				return bucket.category
			}
		}
	}
	return CategoryGeneral
}
