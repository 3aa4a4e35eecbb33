package domain

import "sort"

// Rest returns a new slice without the first element.
// An empty input yields an empty (non-nil) slice; callers that want a
// stricter boundary policy enforce it themselves.
func Rest[T any](s []T) []T {
	if len(s) <= 1 {
		return []T{}
	}
	out := make([]T, len(s)-1)
	copy(out, s[1:])
	return out
}

// Initial returns a new slice without the last element.
// Same empty-input policy as Rest.
func Initial[T any](s []T) []T {
	if len(s) <= 1 {
		return []T{}
	}
	out := make([]T, len(s)-1)
	copy(out, s[:len(s)-1])
	return out
}

// Prepend returns a new slice with vs placed before the elements of s.
func Prepend[T any](s []T, vs ...T) []T {
	out := make([]T, 0, len(s)+len(vs))
	out = append(out, vs...)
	out = append(out, s...)
	return out
}

// Append returns a new slice with vs placed after the elements of s.
// Unlike the builtin append, s is never grown in place.
func Append[T any](s []T, vs ...T) []T {
	out := make([]T, 0, len(s)+len(vs))
	out = append(out, s...)
	out = append(out, vs...)
	return out
}

// Reverse returns a new slice with the element order inverted.
func Reverse[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// SortBy returns a new slice sorted ascending per less.
// The sort is stable: equal elements keep their relative input order.
func SortBy[T any](s []T, less func(a, b T) bool) []T {
	out := make([]T, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Splice returns a new slice equal to s with deleteCount elements starting at
// start replaced by items. start and deleteCount must address a run inside
// the bounds of s (start == len(s) with deleteCount 0 is a pure insert at the
// end).
func Splice[T any](s []T, start, deleteCount int, items ...T) ([]T, error) {
	if start < 0 || start > len(s) {
		return nil, &OpError{
			Op:   "seq.splice",
			Kind: KindOutOfBounds,
			Err:  ErrOutOfBounds,
		}
	}
	if deleteCount < 0 || start+deleteCount > len(s) {
		return nil, &OpError{
			Op:   "seq.splice",
			Kind: KindOutOfBounds,
			Err:  ErrOutOfBounds,
		}
	}

	out := make([]T, 0, len(s)-deleteCount+len(items))
	out = append(out, s[:start]...)
	out = append(out, items...)
	out = append(out, s[start+deleteCount:]...)
	return out, nil
}

// Map returns a new slice holding fn applied to each element of s.
func Map[T, U any](s []T, fn func(T) U) []U {
	out := make([]U, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns a new slice holding the elements of s for which keep is true.
func Filter[T any](s []T, keep func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reduce folds s into a single value, starting from seed.
func Reduce[T, A any](s []T, seed A, fn func(A, T) A) A {
	acc := seed
	for _, v := range s {
		acc = fn(acc, v)
	}
	return acc
}
