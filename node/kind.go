package node

//go:generate go tool stringer -type=Role,Kind -output=kind_string.go

// Role is the structural position a node occupies within its parent.
type Role int

const (
	RoleRoot      Role = iota
	RoleField          // exported struct field
	RoleElement        // slice or array element
	RoleMapKey         // map key
	RoleMapValue       // map value
	RoleComponent      // constructor parameter

	// RoleTotal is a constant that represents the total number of roles defined
	RoleTotal = int(iota)
)

// Kind describes how the value at a node is produced.
type Kind int

const (
	KindUnknown Kind = iota
	KindLeaf         // generated as a whole by a single generator
	KindStruct       // populated field by field, or through a constructor
	KindSlice
	KindArray
	KindMap
	KindInterface   // abstract type without a single known implementation
	KindUnsupported // func, chan, unsafe pointer

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// IsContainer returns true for slices, arrays and maps.
func (k Kind) IsContainer() bool {
	return k == KindSlice || k == KindArray || k == KindMap
}
