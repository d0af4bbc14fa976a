package engine

import "math/rand/v2"

// countingSource counts every 64-bit draw so the exact stream position can
// be saved and replayed.
type countingSource struct {
	pcg   *rand.PCG
	draws int64
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.pcg.Uint64()
}

// RNG is a seeded generator whose position survives snapshots.
type RNG struct {
	seed int64
	src  *countingSource
	rnd  *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	src := &countingSource{pcg: rand.NewPCG(uint64(seed), 0x5eed)}
	return &RNG{seed: seed, src: src, rnd: rand.New(src)}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.rnd.IntN(sides) + 1
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.rnd.IntN(total)
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source draws since creation.
func (r *RNG) Position() int64 {
	return r.src.draws
}

// RestoreRNG creates an RNG and advances it to the given position.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for rng.src.draws < position {
		rng.src.Uint64()
	}
	return rng
}
