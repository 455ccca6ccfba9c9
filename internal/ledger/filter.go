package ledger

import "strings"

// Matches reports whether a document satisfies the search term and status
// filter. The term matches case-insensitively against the number, the
// counterparty name and the linked reference. statusFilter is either the
// "all" sentinel (or empty) or an exact status.
func Matches(doc PayableDocument, searchTerm, statusFilter string) bool {
	if statusFilter != "" && statusFilter != StatusFilterAll && doc.Status != DocumentStatus(statusFilter) {
		return false
	}
	term := strings.TrimSpace(strings.ToLower(searchTerm))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Number), term) ||
		strings.Contains(strings.ToLower(doc.CounterpartyName), term) ||
		strings.Contains(strings.ToLower(doc.LinkedRef), term)
}

// Filter returns the documents matching the predicates, preserving input order.
func Filter(docs []PayableDocument, searchTerm, statusFilter string) []PayableDocument {
	var out []PayableDocument
	for _, d := range docs {
		if Matches(d, searchTerm, statusFilter) {
			out = append(out, d)
		}
	}
	return out
}
