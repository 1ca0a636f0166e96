package testutils

type Age uint8

func (Age) Name() string { return "Age" }

type Name string

func (Name) Name() string { return "Name" }

type Height uint8

func (Height) Name() string { return "Height" }

type Weight uint16

func (Weight) Name() string { return "Weight" }

type Health struct {
	Value int `json:"value"`
}

func (Health) Name() string { return "Health" }

type Position struct{ X, Y int }

func (Position) Name() string { return "Position" }

type Velocity struct{ X, Y int }

func (Velocity) Name() string { return "Velocity" }

type Experience struct{ Value int }

func (Experience) Name() string { return "Experience" }

type PlayerTag struct{ Tag string }

func (PlayerTag) Name() string { return "PlayerTag" }

type Level struct{ Value int }

func (Level) Name() string { return "Level" }

type MapComponent struct {
	Items map[string]int `json:"items"`
}

func (MapComponent) Name() string { return "MapComponent" }

// Inventory has a lowercase kind that sorts between Health and Level when case is ignored.
type Inventory struct {
	Slots []string `json:"slots"`
}

func (Inventory) Name() string { return "inventory" }

// Shadow has the same kind as Age but a different type.
type Shadow struct{}

func (Shadow) Name() string { return "Age" }

// Reserved uses a name taken by the record format.
type Reserved struct{}

func (Reserved) Name() string { return "entity_id" }

// Unnamed has an empty kind.
type Unnamed struct{}

func (Unnamed) Name() string { return "" }
