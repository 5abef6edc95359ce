package analysis

import "sort"

// Rank orders results by ATS score, highest first. Equal scores keep their input order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ATSScore > results[j].ATSScore
	})
}
