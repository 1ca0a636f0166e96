package ecs

import (
	"fmt"
	"testing"

	. "github.com/argus-labs/titan/pkg/ecs/internal/testutils"
)

func BenchmarkStorage_Spawn(b *testing.B) {
	benchmarks := []struct {
		name   string
		bundle Bundle
	}{
		{name: "1 component", bundle: NewBundle(Position{X: 1, Y: 2})},
		{name: "4 components", bundle: NewBundle(Position{X: 1, Y: 2}, Velocity{X: 1}, Health{Value: 100}, Age(3))},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			r := benchRegistry(b)
			s := NewStorage()
			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				if _, err := s.Spawn(r, bm.bundle...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

type movement struct {
	Position Write[Position]
	Velocity Read[Velocity]
}

func BenchmarkQuery_Iterate(b *testing.B) {
	for _, n := range []int{1_000, 100_000} {
		b.Run(fmt.Sprintf("%d entities", n), func(b *testing.B) {
			r := benchRegistry(b)
			s := NewStorage()
			for i := range n {
				var err error
				if i%2 == 0 {
					_, err = s.Spawn(r, Position{}, Velocity{X: 1, Y: 1})
				} else {
					_, err = s.Spawn(r, Position{}, Velocity{X: 1, Y: 1}, Health{})
				}
				if err != nil {
					b.Fatal(err)
				}
			}

			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				res, err := Query[movement](s)
				if err != nil {
					b.Fatal(err)
				}
				for row := range res.Iter() {
					p := row.Position.Ptr()
					v := row.Velocity.Get()
					p.X += v.X
					p.Y += v.Y
				}
			}
		})
	}
}

func BenchmarkSerialize(b *testing.B) {
	r := benchRegistry(b)
	if err := r.RegisterArchetype(Position{}, Velocity{}); err != nil {
		b.Fatal(err)
	}
	s := NewStorage()
	for i := range 10_000 {
		if _, err := s.Spawn(r, Position{X: i}, Velocity{Y: i}); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := Serialize(s, r); err != nil {
			b.Fatal(err)
		}
	}
}

func benchRegistry(b *testing.B) *Registry {
	b.Helper()
	r := NewRegistry()
	for _, register := range []func(RegistrySource) error{
		RegisterComponent[Position],
		RegisterComponent[Velocity],
		RegisterComponent[Health],
		RegisterComponent[Age],
	} {
		if err := register(r); err != nil {
			b.Fatal(err)
		}
	}
	return r
}
