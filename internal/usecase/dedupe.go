package usecase

import (
	"strings"

	"github.com/leadpulse/leadpulse/internal/entity"
)

type DedupeResult struct {
	Accepted   []AddLeadInput
	Imported   int
	Duplicates int
}

// dedupeKey normalizes a profile URL for duplicate detection. An empty
// URL yields an empty key, which is never treated as a duplicate.
func dedupeKey(profileURL string) string {
	return strings.ToLower(strings.TrimSpace(profileURL))
}

// DedupeLeads partitions an incoming batch against the existing leads.
// Single pass, in input order: a record whose normalized URL matches
// either an existing lead or an earlier-accepted record from the same
// batch is counted as a duplicate and dropped. Two records with no URL
// are never duplicates of each other.
func DedupeLeads(existing []entity.Lead, incoming []AddLeadInput) DedupeResult {
	seen := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		if key := dedupeKey(l.ProfileURL); key != "" {
			seen[key] = struct{}{}
		}
	}

	res := DedupeResult{Accepted: []AddLeadInput{}}
	for _, in := range incoming {
		key := dedupeKey(in.ProfileURL)
		if key != "" {
			if _, dup := seen[key]; dup {
				res.Duplicates++
				continue
			}
			seen[key] = struct{}{}
		}
		res.Accepted = append(res.Accepted, in)
		res.Imported++
	}
	return res
}
