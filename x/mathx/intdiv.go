package mathx

import "golang.org/x/exp/constraints"

// AlignDown rounds v down to a multiple of step (step 0 returns v).
func AlignDown[T constraints.Unsigned](v, step T) T {
	if step == 0 {
		return v
	}
	return v - v%step
}
