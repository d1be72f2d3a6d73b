// Author: Sachindu Nethmin
// GitHub: https://github.com/Sachindu-Nethmin
// Created: 2026-03-05
// Last Modified: 2026-03-10

package migrate

import (
	"fmt"
	"sort"
)

// Deriver computes the desired issue content and state for a record.
// Derivation is a pure function of the record: same record in, same
// desired state out.
type Deriver struct {
	sourceURL          string
	extraLabels        []string
	closingStatuses    map[string]bool
	closingResolutions map[string]bool
}

// NewDeriver builds a deriver. sourceURL is the Bugzilla base URL used in
// issue bodies; a record is derived closed iff its status is in
// closingStatuses AND its resolution is in closingResolutions.
func NewDeriver(sourceURL string, extraLabels, closingStatuses, closingResolutions []string) *Deriver {
	return &Deriver{
		sourceURL:          sourceURL,
		extraLabels:        extraLabels,
		closingStatuses:    toSet(closingStatuses),
		closingResolutions: toSet(closingResolutions),
	}
}

// Derive maps a record to its desired issue state.
func (d *Deriver) Derive(rec *Record) Desired {
	labels := []string{
		rec.Product + "/" + rec.Component,
		"BZ-STATUS: " + rec.Status,
	}
	if rec.Resolution != "" {
		labels = append(labels, "BZ-RESOLUTION: "+rec.Resolution)
	}
	labels = append(labels, d.extraLabels...)
	sort.Strings(labels)

	state := StateOpen
	if d.closingStatuses[rec.Status] && d.closingResolutions[rec.Resolution] {
		state = StateClosed
	}

	return Desired{
		Title:  rec.Title,
		Body:   fmt.Sprintf("This issue was imported from Bugzilla %s.", d.BugURL(rec.ID)),
		Labels: labels,
		State:  state,
	}
}

// BugURL returns the canonical URL of a bug in the source tracker.
func (d *Deriver) BugURL(id int) string {
	return fmt.Sprintf("%s/show_bug.cgi?id=%d", d.sourceURL, id)
}

// SameLabelSet reports whether two label lists contain the same labels,
// ignoring order and duplicates.
func SameLabelSet(a, b []string) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for l := range as {
		if !bs[l] {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
