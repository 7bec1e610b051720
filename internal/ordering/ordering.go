// Package ordering computes task positions under drag-and-drop reordering.
// Both operations are pure functions of the current task set and the drop
// target; they return the tasks whose fields changed and never touch tasks
// outside the destination bucket.
//
// The two operations are deliberately asymmetric: a drop into the empty
// area of a bucket appends with a sparse order value and leaves every
// sibling untouched, while a drop onto a specific sibling renumbers the
// whole destination bucket to dense zero-based integers.
package ordering

import (
	"sort"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/store"
)

// AppendToBucket handles a drop into a bucket with no target sibling.
// The moved task gets order = 1 + max(order) among the bucket's current
// tasks, or 0 when the bucket has none. Existing siblings keep their
// order values.
func AppendToBucket(all []models.Task, moved models.Task, bucket models.Bucket) models.Task {
	next := 0
	for _, t := range all {
		if t.ID == moved.ID || t.Bucket != bucket || t.Order == nil {
			continue
		}
		if *t.Order >= next {
			next = *t.Order + 1
		}
	}
	moved.Bucket = bucket
	moved.Order = &next
	return moved
}

// InsertBeforeSibling handles a drop onto a specific sibling: the moved
// task is spliced into the destination bucket's canonical order at the
// sibling's position, and the entire resulting list is renumbered to dense
// zero-based integers. Every returned task belongs to the destination
// bucket; tasks elsewhere are untouched.
func InsertBeforeSibling(all []models.Task, moved models.Task, bucket models.Bucket, siblingID string) ([]models.Task, error) {
	var dest []models.Task
	for _, t := range all {
		if t.ID != moved.ID && t.Bucket == bucket {
			dest = append(dest, t)
		}
	}
	sort.SliceStable(dest, func(i, j int) bool { return store.TaskLess(dest[i], dest[j]) })

	idx := -1
	for i, t := range dest {
		if t.ID == siblingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.ErrNotFound
	}

	moved.Bucket = bucket
	dest = append(dest[:idx], append([]models.Task{moved}, dest[idx:]...)...)

	out := make([]models.Task, len(dest))
	for i, t := range dest {
		pos := i
		t.Order = &pos
		out[i] = t
	}
	return out, nil
}
