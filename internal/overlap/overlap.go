// Package overlap removes spans that are strictly contained in another span.
package overlap

import "github.com/phyten/i18nscan/internal/model"

// Contains reports whether outer [bs, be) swallows inner [as, ae): outer
// covers inner and is strictly larger on at least one side.
func Contains(bs, be, as, ae int) bool {
	return (bs <= as && be > ae) ||
		(bs < as && be >= ae) ||
		(bs < as && be > ae)
}

// ResolveFunc keeps every item that no other item contains, in input order.
// bounds reports the span used for the comparison. Identical spans never
// eliminate each other.
func ResolveFunc[T any](items []T, bounds func(T) (int, int)) []T {
	if len(items) < 2 {
		return items
	}
	out := make([]T, 0, len(items))
	for i, a := range items {
		as, ae := bounds(a)
		kept := true
		for j, b := range items {
			if i == j {
				continue
			}
			bs, be := bounds(b)
			if Contains(bs, be, as, ae) {
				kept = false
				break
			}
		}
		if kept {
			out = append(out, a)
		}
	}
	return out
}

// Resolve is ResolveFunc over text spans.
func Resolve(spans []model.TextSpan) []model.TextSpan {
	return ResolveFunc(spans, model.TextSpan.Bounds)
}

// DedupeFunc drops items whose bounds equal those of an earlier item.
func DedupeFunc[T any](items []T, bounds func(T) (int, int)) []T {
	if len(items) < 2 {
		return items
	}
	seen := make(map[[2]int]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		s, e := bounds(it)
		k := [2]int{s, e}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Dedupe is DedupeFunc over text spans.
func Dedupe(spans []model.TextSpan) []model.TextSpan {
	return DedupeFunc(spans, model.TextSpan.Bounds)
}
