// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMin and DefaultMax bound simulated review scores.
	DefaultMin = 3.5
	DefaultMax = 5.0
)

// Random simulates a review service with uniform scores in [Min, Max],
// rounded to two decimals. It never fails. Each score is drawn from a PCG
// stream keyed by Seed and the name, so a given seed scores every name the
// same way regardless of the order or concurrency of the calls.
type Random struct {
	Min, Max float64
	Seed     uint64
}

// NewRandom returns a simulated provider over [DefaultMin, DefaultMax]
// seeded from the clock.
func NewRandom() *Random {
	return NewSeededRandom(0)
}

// NewSeededRandom returns a simulated provider seeded with seed. A zero
// seed draws one from the clock.
func NewSeededRandom(seed uint64) *Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Random{Min: DefaultMin, Max: DefaultMax, Seed: seed}
}

// Score returns the simulated score for name.
func (r *Random) Score(ctx context.Context, name string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	u := rand.New(rand.NewPCG(r.Seed, h.Sum64())).Float64()

	v := r.Min + u*(r.Max-r.Min)
	return math.Round(v*100) / 100, nil
}
