package ecs_test

import (
	"context"
	"fmt"

	"github.com/argus-labs/titan/pkg/ecs"
	. "github.com/argus-labs/titan/pkg/ecs/internal/testutils"
)

func Example() {
	w, _ := ecs.NewWorld()
	_ = ecs.RegisterComponent[Age](w)
	_ = ecs.RegisterComponent[Name](w)
	_ = w.RegisterArchetype(Age(0), Name(""))

	_, _ = w.Spawn(Age(23), Name("Jeff"))
	_, _ = w.Spawn(Name("Julia"), Age(19))

	type person struct {
		Age  ecs.Write[Age]
		Name ecs.Read[Name]
	}
	res, _ := ecs.Query[person](w)
	for eid, p := range res.All() {
		p.Age.Set(p.Age.Get() + 1)
		fmt.Println(eid, p.Name.Get(), p.Age.Get())
	}

	data, _ := w.Serialize(context.Background())
	fmt.Println(string(data))
	// Output:
	// 0 Jeff 24
	// 1 Julia 20
	// [{"bundle_kind":"AgeName","entity_id":0,"Age":24,"Name":"Jeff"},{"bundle_kind":"AgeName","entity_id":1,"Age":20,"Name":"Julia"}]
}
