package report

// ExtractVersion returns the two characters following the search field and
// one separator in a job name: "osp-17-deploy" with "osp" gives "17".
// Like a slice of the name, the label is clamped to the name length, so a
// short name yields a shorter or empty label.
func ExtractVersion(jobName, searchField string) string {
	start := len(searchField) + 1
	end := start + 2
	if start > len(jobName) {
		return ""
	}
	if end > len(jobName) {
		end = len(jobName)
	}
	return jobName[start:end]
}
