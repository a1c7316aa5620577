package testmodel

// Page is a generic result page. Its element type is the type variable T
// bound when the model is created.
type Page struct {
	Number int
	Items  []any       `instancio:"T"`
	Lookup map[any]any `instancio:"K,T"`
	First  Box         `instancio:"V=T"`
}

// Box holds one value of V.
type Box struct {
	Value any `instancio:"V"`
}

// Shape has several implementations; models pick one with a subtype
// directive or an implementation list.
type Shape interface {
	Area() float64
}

type Circle struct {
	Radius float64
}

func (c Circle) Area() float64 { return 3.14159 * c.Radius * c.Radius }

type Rect struct {
	W, H float64
}

func (r *Rect) Area() float64 { return r.W * r.H }

// Drawing holds shapes of unknown concrete type.
type Drawing struct {
	Title  string
	Main   Shape
	Shapes []Shape
}

// Category is a self-referencing tree.
type Category struct {
	Name     string
	Parent   *Category
	Children []*Category
}
