package analysis

import (
	"fmt"
	"strings"

	"github.com/spigell/ats-screener/internal/textutil"
)

const shortResumeLength = 500

var watchList = []string{"sql", "python", "java", "aws", "gcp", "azure"}

// MissingKeywords returns the job tokens longer than 3 characters that the
// resume lacks, sorted and capped at MaxMissingKeywords.
func MissingKeywords(resume, jd textutil.TokenSet) []string {
	missing := make([]string, 0)
	for _, token := range jd.Difference(resume) {
		if textutil.RuneLen(token) > 3 {
			missing = append(missing, token)
		}
	}
	return textutil.Limit(missing, MaxMissingKeywords)
}

// RuleBasedImprovements builds deterministic tips for normalized resume and job text.
// Watch-list keywords are matched as substrings.
func RuleBasedImprovements(resume, jd string, missing []string) []string {
	var tips []string
	if textutil.RuneLen(resume) < shortResumeLength {
		tips = append(tips, "Expand experience details with measurable results (add metrics and scope).")
	}

	lowerJD := strings.ToLower(jd)
	lowerResume := strings.ToLower(resume)
	for _, keyword := range watchList {
		if strings.Contains(lowerJD, keyword) && !strings.Contains(lowerResume, keyword) {
			tips = append(tips, fmt.Sprintf("Add evidence of %s (projects, certifications, or achievements).", strings.ToUpper(keyword)))
		}
	}

	for _, keyword := range textutil.Limit(missing, 10) {
		tips = append(tips, fmt.Sprintf("Address missing keyword: '%s'. Add relevant experience or training.", keyword))
	}

	return textutil.Limit(textutil.Unique(tips), MaxImprovements)
}
