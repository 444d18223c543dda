// Package dependency implements the execution-dependency resolver (§4.5):
// for a given (vertex, firing, input edge), which producer vertex
// firings hold the tokens this firing consumes, walking through delays
// and across hierarchy boundaries as needed.
package dependency

// FloorDiv is integer division rounding toward negative infinity, used
// throughout the dependency formulas below instead of Go's
// truncate-toward-zero "/" (§4.5, §9).
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod is the remainder consistent with FloorDiv: always has the sign
// of b (here always non-negative since every rate is positive).
func FloorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// ComputeConsLowerDep computes the lower producer-firing dependency of a
// consumer firing k:
//
//	lower_dep = floor((k*c - d) / p)
//
// with c = consumption, p = production, d = delay. A negative result
// means the dependency is covered by the delay's initial tokens, and is
// clamped to -1.
func ComputeConsLowerDep(consumption, production int64, firing int32, delay int64) int64 {
	v := FloorDiv(int64(firing)*consumption-delay, production)
	if v < 0 {
		return -1
	}
	return v
}

// ComputeConsUpperDep computes the upper producer-firing dependency of a
// consumer firing k:
//
//	upper_dep = floor(((k+1)*c - d - 1) / p)
func ComputeConsUpperDep(consumption, production int64, firing int32, delay int64) int64 {
	v := FloorDiv((int64(firing)+1)*consumption-delay-1, production)
	if v < 0 {
		return -1
	}
	return v
}
