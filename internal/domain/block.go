package domain

import "fmt"

type Location struct {
	Scope string
	X     int
	Y     int
	Z     int
}

func (l Location) String() string {
	return fmt.Sprintf("Location{scope=%s, x=%d, y=%d, z=%d}", l.Scope, l.X, l.Y, l.Z)
}

func (l Location) Add(dx, dy, dz int) Location {
	return Location{Scope: l.Scope, X: l.X + dx, Y: l.Y + dy, Z: l.Z + dz}
}

type Block struct {
	Type     string
	Data     string
	State    string
	Location Location
	Biome    string
	Liquid   string
}

func (b Block) String() string {
	return fmt.Sprintf("Block{type=%s, x=%d, y=%d, z=%d}", b.Type, b.Location.X, b.Location.Y, b.Location.Z)
}
