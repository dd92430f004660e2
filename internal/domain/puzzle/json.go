package puzzle

import (
	"encoding/json"
	"fmt"
	"math"
)

// jsonFloat encodes non-finite values as the strings "Infinity",
// "-Infinity" and "NaN" instead of failing.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(FormatNumber(v))
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode number string: %w", err)
		}
		switch s {
		case "Infinity":
			*f = jsonFloat(math.Inf(1))
		case "-Infinity":
			*f = jsonFloat(math.Inf(-1))
		case "NaN":
			*f = jsonFloat(math.NaN())
		default:
			return fmt.Errorf("unsupported number %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode number: %w", err)
	}
	*f = jsonFloat(v)
	return nil
}

type itemJSON struct {
	Value      jsonFloat       `json:"value"`
	Expression string          `json:"expression"`
	LaTeX      string          `json:"latex,omitempty"`
	Complexity jsonFloat       `json:"complexity"`
	Derivation *derivationJSON `json:"derivation"`
}

type derivationJSON struct {
	Kind    string  `json:"kind"`
	Op      Op      `json:"op"`
	Result  string  `json:"result"`
	Pattern Pattern `json:"pattern,omitempty"`
	Inputs  []Item  `json:"inputs"`
}

// MarshalJSON encodes the item with its full derivation tree. Leaves and the
// sentinel carry a null derivation.
func (it Item) MarshalJSON() ([]byte, error) {
	out := itemJSON{
		Value:      jsonFloat(it.value),
		Expression: it.expression,
		Complexity: jsonFloat(it.complexity),
	}
	if !it.IsSentinel() {
		out.LaTeX = it.LaTeX()
	}
	if d := it.derivation; d != nil && d.Kind() != "leaf" {
		dj := &derivationJSON{
			Kind:   d.Kind(),
			Op:     d.op(),
			Result: Rounded(it.value),
		}
		if agg, ok := d.(Aggregate); ok {
			dj.Pattern = agg.Pattern
		}
		for _, in := range d.Inputs() {
			dj.Inputs = append(dj.Inputs, *in)
		}
		out.Derivation = dj
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores an item encoded by MarshalJSON.
func (it *Item) UnmarshalJSON(data []byte) error {
	var in itemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}
	*it = Item{
		value:      float64(in.Value),
		expression: in.Expression,
		complexity: float64(in.Complexity),
	}

	d := in.Derivation
	if d == nil {
		if !math.IsInf(it.value, 1) {
			it.derivation = Leaf{}
		}
		return nil
	}

	inputs := make([]*Item, len(d.Inputs))
	for i := range d.Inputs {
		inputs[i] = &d.Inputs[i]
	}
	need := map[string]int{"unary": 1, "binary": 2, "aggregate": 2}
	n, ok := need[d.Kind]
	if !ok {
		return fmt.Errorf("unknown derivation kind %q", d.Kind)
	}
	if len(inputs) != n {
		return fmt.Errorf("derivation %q needs %d inputs, got %d", d.Kind, n, len(inputs))
	}

	switch d.Kind {
	case "unary":
		it.derivation = Unary{Op: d.Op, Input: inputs[0]}
	case "binary":
		it.derivation = Binary{Op: d.Op, Left: inputs[0], Right: inputs[1]}
	case "aggregate":
		it.derivation = Aggregate{Op: d.Op, Low: inputs[0], High: inputs[1], Pattern: d.Pattern}
	}
	return nil
}
