package workload

// mixSeed combines a run seed and a cycle index into a single deterministic
// 64-bit seed using a splitmix64-style finalizer, so cycle_calls(i) is
// bit-identical across processes for a fixed (seed, i) without sharing
// mutable rng state between concurrently-executing cycles.
func mixSeed(seed int64, cycle uint64) int64 {
	z := uint64(seed) + cycle*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return int64(z)
}
