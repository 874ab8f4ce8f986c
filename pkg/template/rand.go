package template

import mathrand "math/rand/v2"

// globalIntN and globalFloat64 use the automatically seeded global source.
func globalIntN(n int) int { return mathrand.IntN(n) }

func globalFloat64() float64 { return mathrand.Float64() }
