package utils

import (
	"strings"
)

// Cast ...
func Cast[T any](origin any) (T, bool) {
	val, ok := origin.(T)
	return val, ok
}

// TryCast ...
func TryCast[T any](origin any) bool {
	_, ok := Cast[T](origin)
	return ok
}

func Map[T, R any](a []T, clb func(T) R) (out []R) {
	for _, el := range a {
		out = append(out, clb(el))
	}
	return
}

func MapJoin[T any](a []T, clb func(T) string, sep string) string {
	return strings.Join(Map(a, clb), sep)
}

func Filter[T any](a []T, keep func(T) bool) (out []T) {
	for _, el := range a {
		if keep(el) {
			out = append(out, el)
		}
	}
	return
}

// Find returns the first element matching pred.
func Find[T any](a []T, pred func(T) bool) (T, bool) {
	for _, el := range a {
		if pred(el) {
			return el, true
		}
	}
	var zero T
	return zero, false
}

// IndexOf returns the position of the first element equal to v, or -1.
func IndexOf[T comparable](a []T, v T) int {
	for i, el := range a {
		if el == v {
			return i
		}
	}
	return -1
}

// Ternary ...
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// SplitLast splits "a.b.c" into "a.b" and "c". The prefix is empty when sep is absent.
func SplitLast(s, sep string) (string, string) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+len(sep):]
}
