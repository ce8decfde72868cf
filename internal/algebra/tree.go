package algebra

import "encoding/json"

// Node is a serializable view of an expression tree.
type Node struct {
	Kind        string             `json:"kind" yaml:"kind"`
	Text        string             `json:"text" yaml:"text"`
	Coefficient *float64           `json:"coefficient,omitempty" yaml:"coefficient,omitempty"`
	Parameters  map[string]float64 `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Degree      *float64           `json:"degree,omitempty" yaml:"degree,omitempty"`
	Op          string             `json:"op,omitempty" yaml:"op,omitempty"`
	Operands    []*Node            `json:"operands,omitempty" yaml:"operands,omitempty"`
}

// Tree returns the serializable view of e.
func (e *Expression) Tree() *Node {
	n := &Node{Kind: e.kind.String(), Text: e.String()}
	if e.kind == KindTerm {
		num, degree := e.coef.num, e.degree
		n.Coefficient = &num
		n.Degree = &degree
		n.Parameters = e.coef.datum
		return n
	}

	n.Op = e.op
	for _, child := range e.Operands() {
		n.Operands = append(n.Operands, child.Tree())
	}
	return n
}

func (e *Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Tree())
}

func (e *Expression) MarshalYAML() (interface{}, error) {
	return e.Tree(), nil
}
