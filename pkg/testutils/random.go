// Package testutils holds helpers shared by model-based and exhaustive tests.
package testutils

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"testing"
	"time"
)

// Seed is shared by every generator in a test binary so a failing run can be replayed with
// TEST_SEED.
var Seed uint64 //nolint:gochecknoglobals // intentionally global for test reproducibility

func init() { //nolint:gochecknoinits // intentionally using init to set seed
	Seed = uint64(time.Now().UnixNano()) //nolint:gosec // overflow is acceptable for test seeds
	if envSeed := os.Getenv("TEST_SEED"); envSeed != "" {
		parsed, err := strconv.ParseUint(envSeed, 0, 64)
		if err == nil {
			Seed = parsed
		}
	}
	fmt.Printf("to reproduce: TEST_SEED=0x%x\n", Seed) //nolint:forbidigo // just for testing
}

// NewRand returns a PRNG seeded from Seed. The test name is mixed in so parallel tests don't walk
// the same sequence.
func NewRand(t *testing.T) *rand.Rand {
	t.Helper()
	var salt uint64
	for _, c := range t.Name() {
		salt = salt*31 + uint64(c)
	}
	return rand.New(rand.NewPCG(Seed, salt)) //nolint:gosec // weak RNG is fine for tests
}

// WeightedOp is a constraint for operation types that use their value as the weight.
type WeightedOp interface {
	~uint8 | ~uint16 | ~uint32 | ~int
}

// RandWeightedOp returns a random operation from a slice, using each op's value as its weight.
func RandWeightedOp[T WeightedOp](r *rand.Rand, ops []T) T {
	var total int
	for _, op := range ops {
		total += int(op)
	}

	pick := r.IntN(total)
	for _, op := range ops {
		weight := int(op)
		if pick < weight {
			return op
		}
		pick -= weight
	}
	panic("unreachable")
}

// RandSubset returns a non-empty random subset of items, in random order.
func RandSubset[T any](r *rand.Rand, items []T) []T {
	picked := make([]T, 0, len(items))
	for _, i := range r.Perm(len(items)) {
		if r.IntN(2) == 0 {
			picked = append(picked, items[i])
		}
	}
	if len(picked) == 0 {
		picked = append(picked, items[r.IntN(len(items))])
	}
	return picked
}

// RandString generates a random alphanumeric string of the given length.
func RandString(r *rand.Rand, length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = chars[r.IntN(len(chars))]
	}
	return string(b)
}
