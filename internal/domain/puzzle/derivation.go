package puzzle

// Derivation records how an Item was produced. The set of implementations
// is closed: Leaf, Unary, Binary and Aggregate.
type Derivation interface {
	// Kind names the variant ("leaf", "unary", "binary", "aggregate").
	Kind() string
	// Inputs returns the items consumed, in display order.
	Inputs() []*Item
	op() Op
}

// Leaf marks an original input.
type Leaf struct{}

// Unary is a single-operand derivation (√ or !).
type Unary struct {
	Op    Op
	Input *Item
}

// Binary is a two-operand derivation.
type Binary struct {
	Op    Op
	Left  *Item
	Right *Item
}

// Aggregate is a summation whose bounds come from two items.
type Aggregate struct {
	Op      Op
	Low     *Item
	High    *Item
	Pattern Pattern
}

func (Leaf) Kind() string      { return "leaf" }
func (Unary) Kind() string     { return "unary" }
func (Binary) Kind() string    { return "binary" }
func (Aggregate) Kind() string { return "aggregate" }

func (Leaf) Inputs() []*Item        { return nil }
func (d Unary) Inputs() []*Item     { return []*Item{d.Input} }
func (d Binary) Inputs() []*Item    { return []*Item{d.Left, d.Right} }
func (d Aggregate) Inputs() []*Item { return []*Item{d.Low, d.High} }

func (Leaf) op() Op        { return "" }
func (d Unary) op() Op     { return d.Op }
func (d Binary) op() Op    { return d.Op }
func (d Aggregate) op() Op { return d.Op }

// OpOf returns the operator of d, or "" for leaves and nil.
func OpOf(d Derivation) Op {
	if d == nil {
		return ""
	}
	return d.op()
}
