package inbox

import (
	"slices"
	"strings"
)

// Filter narrows classified conversations by the active facets, then by the
// tab predicate. Facets AND-combine and an empty selection is a no-op over
// the tab-filtered set. currentUserID only matters for TabChat.
func Filter(convs []Classified, f FacetSelection, tab Tab, currentUserID uint64) []Classified {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	queryDigits := digits(query)

	out := make([]Classified, 0, len(convs))
	for _, c := range convs {
		if !matchesSearch(c, query, queryDigits) {
			continue
		}
		if len(f.Handlers) > 0 && !slices.Contains(f.Handlers, c.Handler) {
			continue
		}
		if len(f.StatusIDs) > 0 {
			// No status id means excluded while the facet is active.
			if c.StatusID == nil || !slices.Contains(f.StatusIDs, *c.StatusID) {
				continue
			}
		}
		if len(f.Tags) > 0 && !anyTag(c.Tags, f.Tags) {
			continue
		}
		if len(f.Departments) > 0 {
			if c.DepartmentID == nil || !slices.Contains(f.Departments, *c.DepartmentID) {
				continue
			}
		}
		if !matchesTab(c, tab, currentUserID) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesSearch(c Classified, query, queryDigits string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.ContactName), query) {
		return true
	}
	return queryDigits != "" && strings.Contains(digits(c.Phone), queryDigits)
}

func matchesTab(c Classified, tab Tab, currentUserID uint64) bool {
	archived := c.ArchivedAt != nil
	switch tab {
	case TabArchived:
		return archived
	case TabAll:
		return !archived
	case TabChat:
		return !archived && c.Handler == HandlerHuman &&
			c.AssignedTo != nil && *c.AssignedTo == currentUserID
	case TabAI:
		return !archived && c.Handler == HandlerAI
	case TabQueue:
		return !archived && (c.Handler == HandlerUnassigned ||
			(c.Handler == HandlerHuman && c.AssignedTo == nil))
	default:
		return false
	}
}

func anyTag(have, want []string) bool {
	for _, t := range have {
		if slices.Contains(want, t) {
			return true
		}
	}
	return false
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
