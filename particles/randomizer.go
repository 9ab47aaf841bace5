// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package particles holds the particle system helpers shared by emitters
// and affectors.
package particles

import "math/rand/v2"

// DefaultTableSize is the number of precomputed values used by Init when
// size is not positive.
const DefaultTableSize = 65536

// User identifies the consumer of a random value, so that e.g. colors and
// sizes of the same particle vary independently.
type User int

// Random value users. Users up to DeterministicSeparator always get the
// same value for the same particle index; later users do so only in
// deterministic mode.
const (
	UserDefault User = iota
	WanderXPaceStart
	WanderYPaceStart
	WanderZPaceStart
	WanderXPaceVariation
	WanderYPaceVariation
	WanderZPaceVariation
	WanderXAmountVariation
	WanderYAmountVariation
	WanderZAmountVariation
	AttractorDurationVariation
	AttractorPosXVariation
	AttractorPosYVariation
	AttractorPosZVariation
	Shape1
	Shape2
	Shape3
	Shape4

	DeterministicSeparator

	LifeSpanVariation
	ScaleVariation
	RotationXVariation
	RotationYVariation
	RotationZVariation
	RotationVelocityXVariation
	RotationVelocityYVariation
	RotationVelocityZVariation
	ColorRVariation
	ColorGVariation
	ColorBVariation
	ColorAVariation
	TargetDirPosXVariation
	TargetDirPosYVariation
	TargetDirPosZVariation
	TargetDirMagnitudeVariation
	VectorDirXVariation
	VectorDirYVariation
	VectorDirZVariation
)

// Randomizer hands out cheap pseudo-random numbers in [0, 1) from a
// seeded table. Particles do not need strong randomness, and a fixed seed
// makes effects reproducible.
//
// A Randomizer is owned by one particle system and is not safe for
// concurrent use.
type Randomizer struct {
	values        []float32
	index         int
	deterministic bool
}

// NewRandomizer returns a randomizer initialized with seed and the default
// table size.
func NewRandomizer(seed uint64) *Randomizer {
	r := &Randomizer{}
	r.Init(seed, DefaultTableSize)
	return r
}

// Init refills the table from seed. A size below one selects
// DefaultTableSize.
func (r *Randomizer) Init(seed uint64, size int) {
	if size <= 0 {
		size = DefaultTableSize
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.values = make([]float32, size)
	for i := range r.values {
		r.values[i] = rng.Float32()
	}
	r.index = 0
}

// Size returns the table size, or 0 before Init.
func (r *Randomizer) Size() int { return len(r.values) }

// SetDeterministic makes every user deterministic.
func (r *Randomizer) SetDeterministic(on bool) { r.deterministic = on }

// Deterministic reports whether deterministic mode is on.
func (r *Randomizer) Deterministic() bool { return r.deterministic }

// Get returns the value for particle index and user. It is stable for the
// same inputs unless user is past DeterministicSeparator and deterministic
// mode is off, in which case it behaves like Next.
func (r *Randomizer) Get(index int, user User) float32 {
	n := len(r.values)
	if n == 0 {
		return 0
	}
	if !r.deterministic && user > DeterministicSeparator {
		return r.Next()
	}
	i := (index + int(user)) % n
	if i < 0 {
		i += n
	}
	return r.values[i]
}

// Next returns the next table value, wrapping at the end. It is not
// stable across runs with different call orders.
func (r *Randomizer) Next() float32 {
	n := len(r.values)
	if n == 0 {
		return 0
	}
	if r.index < n-1 {
		r.index++
	} else {
		r.index = 0
	}
	return r.values[r.index]
}
