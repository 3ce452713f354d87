// Package brand holds the fixed table of agency brands that records refer to
// by id. References are plain strings; nothing checks them against the table.
package brand

// ID identifies a brand
type ID string

const (
	Northwind ID = "northwind"
	Lumen     ID = "lumen"
	Atlas     ID = "atlas"
	Halcyon   ID = "halcyon"
)

// Brand is one row of the lookup table
type Brand struct {
	ID    ID     `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

var table = []Brand{
	{ID: Northwind, Name: "Northwind Studio", Color: "#2563eb"},
	{ID: Lumen, Name: "Lumen Media", Color: "#f59e0b"},
	{ID: Atlas, Name: "Atlas Digital", Color: "#10b981"},
	{ID: Halcyon, Name: "Halcyon Labs", Color: "#8b5cf6"},
}

// All returns the table in declaration order.
func All() []Brand {
	out := make([]Brand, len(table))
	copy(out, table)
	return out
}

// Lookup resolves a brand id. Unknown ids report false.
func Lookup(id string) (Brand, bool) {
	for _, b := range table {
		if string(b.ID) == id {
			return b, true
		}
	}
	return Brand{}, false
}

// Resolve maps ids to brands, keeping unknown ids as name-only entries.
func Resolve(ids ...string) []Brand {
	out := make([]Brand, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		b, ok := Lookup(id)
		if !ok {
			b = Brand{ID: ID(id), Name: id}
		}
		out = append(out, b)
	}
	return out
}
