// Package rng provides the single pseudo-random stream a simulation run draws from.
//
// A Stream is created once per run and passed by pointer to every translation and
// execution step that needs randomness. Draw order is therefore program order, which is
// what makes seeded runs reproducible. A Stream is not safe for concurrent use and is
// never copied.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Stream is a pseudo-random stream owned by exactly one run.
type Stream struct {
	rand   *rand.Rand
	seeded bool
	draws  uint64
}

// New returns a stream seeded with *seed, or one seeded from process entropy when seed
// is nil.
func New(seed *uint64) *Stream {
	if seed != nil {
		return NewSeeded(*seed)
	}
	var key [32]byte
	if _, err := crand.Read(key[:]); err != nil {
		// crypto/rand only fails on broken platforms; fall back to the runtime source.
		binary.LittleEndian.PutUint64(key[0:], rand.Uint64())
		binary.LittleEndian.PutUint64(key[8:], rand.Uint64())
		binary.LittleEndian.PutUint64(key[16:], rand.Uint64())
		binary.LittleEndian.PutUint64(key[24:], rand.Uint64())
	}
	return &Stream{rand: rand.New(rand.NewChaCha8(key))}
}

// NewSeeded returns a stream fully determined by seed.
func NewSeeded(seed uint64) *Stream {
	return &Stream{
		rand:   rand.New(rand.NewPCG(seed, splitmix(seed))),
		seeded: true,
	}
}

// Seeded reports whether the stream was created from an explicit seed.
func (s *Stream) Seeded() bool { return s.seeded }

// Draws returns the number of values drawn so far.
func (s *Stream) Draws() uint64 { return s.draws }

// Uint64 draws the next 64-bit value.
func (s *Stream) Uint64() uint64 {
	s.draws++
	return s.rand.Uint64()
}

// Uint32 draws the next 32-bit value.
func (s *Stream) Uint32() uint32 {
	s.draws++
	return s.rand.Uint32()
}

// splitmix is one round of SplitMix64, used to derive the PCG stream selector.
func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
