package qrtable

import "fmt"

// MaxRefs is the largest reference number. Positions beyond it share "FF".
const MaxRefs = 255

// ToHex2 formats n as a 2-digit uppercase hexadecimal Ref after clamping it
// to [1, MaxRefs].
func ToHex2(n int) Ref {
	n = max(1, min(n, MaxRefs))
	return Ref(fmt.Sprintf("%02X", n))
}

// AssignRefs numbers urls from 1 in order.
func AssignRefs(urls []string) []Assignment {
	out := make([]Assignment, len(urls))
	for i, u := range urls {
		out[i] = Assignment{Ref: ToHex2(i + 1), URL: u}
	}
	return out
}
