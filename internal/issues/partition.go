package issues

// Filter returns the issues with the given severity.
func Filter(list []Issue, sev Severity) []Issue {
	var out []Issue
	for _, i := range list {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// HasBlocking reports whether any issue is blocking.
func HasBlocking(list []Issue) bool {
	for _, i := range list {
		if i.Severity == Blocking {
			return true
		}
	}
	return false
}

// For returns the issues about subject.
func For(list []Issue, subject Subject) []Issue {
	var out []Issue
	for _, i := range list {
		if i.Subject.Same(subject) {
			out = append(out, i)
		}
	}
	return out
}

// Counts returns the number of blocking and advisory issues.
func Counts(list []Issue) (blocking, advisory int) {
	for _, i := range list {
		if i.Severity == Blocking {
			blocking++
		} else {
			advisory++
		}
	}
	return blocking, advisory
}
