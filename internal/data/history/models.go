package history

import (
	"sort"
	"time"

	"utoipauto/internal/engine/discover"
)

const (
	BucketFunctions = "functions"
	BucketSchemas   = "schemas"
	BucketResponses = "responses"
)

// Run is one persisted discovery result.
type Run struct {
	ID         string
	ProjectKey string
	Timestamp  time.Time
	Files      int
	Entries    []Entry
}

// Entry is one output line of a run, in discovery order.
type Entry struct {
	Bucket string
	Kind   string
	Name   string
}

// NewRun captures a discovery result. ID and Timestamp are filled in by
// Store.SaveRun when empty.
func NewRun(projectKey string, res discover.Result) Run {
	run := Run{ProjectKey: projectKey, Files: res.Files}
	for _, item := range res.Items {
		run.Entries = append(run.Entries, Entry{Bucket: BucketOf(item.Kind), Kind: item.Kind.String(), Name: item.Name})
	}
	return run
}

func BucketOf(kind discover.Kind) string {
	switch kind {
	case discover.KindFn:
		return BucketFunctions
	case discover.KindModel, discover.KindCustomModelImpl:
		return BucketSchemas
	default:
		return BucketResponses
	}
}

// Count returns the number of entries in bucket.
func (r Run) Count(bucket string) int {
	n := 0
	for _, e := range r.Entries {
		if e.Bucket == bucket {
			n++
		}
	}
	return n
}

// RunDiff lists entries that appeared or disappeared between two runs.
type RunDiff struct {
	Added   []Entry
	Removed []Entry
}

func (d RunDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff compares two runs by (bucket, name). Duplicates count separately, so
// a route registered twice and then once shows up as one removal. A nil prev
// reports every entry of cur as added.
func Diff(prev *Run, cur Run) RunDiff {
	type key struct{ bucket, name string }

	counts := make(map[key]int)
	kinds := make(map[key]string)
	if prev != nil {
		for _, e := range prev.Entries {
			k := key{e.Bucket, e.Name}
			counts[k]--
			kinds[k] = e.Kind
		}
	}
	for _, e := range cur.Entries {
		k := key{e.Bucket, e.Name}
		counts[k]++
		kinds[k] = e.Kind
	}

	var diff RunDiff
	for k, n := range counts {
		for ; n > 0; n-- {
			diff.Added = append(diff.Added, Entry{Bucket: k.bucket, Kind: kinds[k], Name: k.name})
		}
		for ; n < 0; n++ {
			diff.Removed = append(diff.Removed, Entry{Bucket: k.bucket, Kind: kinds[k], Name: k.name})
		}
	}
	sortEntries(diff.Added)
	sortEntries(diff.Removed)
	return diff
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Bucket != entries[j].Bucket {
			return entries[i].Bucket < entries[j].Bucket
		}
		return entries[i].Name < entries[j].Name
	})
}
