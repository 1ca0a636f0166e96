package testutils

import "github.com/argus-labs/titan/pkg/assert"

// Gen walks every sequence of choices a test body can make, in odometer order:
//
//	for g := NewGen(); !g.Done(); {
//	    testutils.Shuffle(g, items)
//	    ...
//	}
//
// A pass records each choice with its bound. Done advances the last choice that can still grow
// and drops the ones after it, so the next pass replays the prefix and starts fresh from there.
//
// See: <https://matklad.github.io/2021/11/07/generate-all-the-things.html>
type Gen struct {
	choices []choice // Choices of the current pass, then stale ones from the last pass
	next    int      // Index of the next choice in the current pass
	started bool
}

type choice struct {
	value int
	bound int
}

func NewGen() *Gen {
	return &Gen{}
}

// Done reports whether every sequence has been produced. It must be called before each pass.
func (g *Gen) Done() bool {
	if !g.started {
		g.started = true
		return false
	}

	g.choices = g.choices[:g.next]
	g.next = 0
	for i := len(g.choices) - 1; i >= 0; i-- {
		if g.choices[i].value < g.choices[i].bound {
			g.choices[i].value++
			g.choices = g.choices[:i+1]
			return false
		}
	}
	return true
}

// Intn returns a choice in [0, bound]. Within a pass the same call sites must ask for the same
// bounds as long as earlier choices repeat.
func (g *Gen) Intn(bound int) int {
	assert.That(bound >= 0, "exhaustive generator: negative bound %d", bound)
	if g.next == len(g.choices) {
		g.choices = append(g.choices, choice{})
	}
	c := &g.choices[g.next]
	c.bound = bound
	g.next++
	return c.value
}

// Shuffle permutes slice in place. Across a full enumeration every permutation appears once.
func Shuffle[T any](g *Gen, slice []T) {
	for i := range len(slice) - 1 {
		j := i + g.Intn(len(slice)-1-i)
		slice[i], slice[j] = slice[j], slice[i]
	}
}
