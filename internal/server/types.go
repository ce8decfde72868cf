package server

import (
	"errors"
	"fmt"
	"math"

	"github.com/lacquerai/deriv/internal/algebra"
	"github.com/lacquerai/deriv/internal/parser"
)

// ParseRequest asks for the canonical form of an expression.
type ParseRequest struct {
	Expression string `json:"expression" jsonschema:"required,description=Infix expression in x"`
}

// ParseResponse describes a parsed expression.
type ParseResponse struct {
	Expression string        `json:"expression" yaml:"expression"`
	Canonical  string        `json:"canonical" yaml:"canonical"`
	Constant   bool          `json:"constant" yaml:"constant"`
	Datum      bool          `json:"datum" yaml:"datum"`
	Tree       *algebra.Node `json:"tree,omitempty" yaml:"tree,omitempty"`
}

// DeriveRequest asks for one or more successive derivatives.
type DeriveRequest struct {
	Expression string `json:"expression" jsonschema:"required"`
	Order      int    `json:"order,omitempty" jsonschema:"minimum=1,maximum=16,default=1"`
}

// DeriveResponse lists derivatives in increasing order.
type DeriveResponse struct {
	Expression  string   `json:"expression" yaml:"expression"`
	Canonical   string   `json:"canonical" yaml:"canonical"`
	Derivatives []string `json:"derivatives" yaml:"derivatives"`
}

// EvaluateRequest asks for the value of an expression at x.
type EvaluateRequest struct {
	Expression string             `json:"expression" jsonschema:"required"`
	X          float64            `json:"x"`
	Params     map[string]float64 `json:"params,omitempty"`
}

type EvaluateResponse struct {
	Expression string  `json:"expression" yaml:"expression"`
	X          float64 `json:"x" yaml:"x"`
	Value      float64 `json:"value" yaml:"value"`
}

// FunctionInfo is one registry entry.
type FunctionInfo struct {
	Name        string `json:"name" yaml:"name"`
	Derivative  string `json:"derivative,omitempty" yaml:"derivative,omitempty"`
	Description string `json:"description" yaml:"description"`
}

type FunctionsResponse struct {
	Functions []FunctionInfo `json:"functions" yaml:"functions"`
}

// ErrorBody explains why a request failed. Kind is "parse", "calc",
// "request" or "internal".
type ErrorBody struct {
	Kind       string `json:"kind" yaml:"kind"`
	Message    string `json:"message" yaml:"message"`
	Offset     *int   `json:"offset,omitempty" yaml:"offset,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error" yaml:"error"`
}

// MaxOrder bounds how many successive derivatives one request may ask for.
const MaxOrder = 16

// NewParseResponse describes e, which was parsed from text.
func NewParseResponse(text string, e *algebra.Expression, tree bool) ParseResponse {
	resp := ParseResponse{
		Expression: text,
		Canonical:  e.String(),
		Constant:   e.IsConstant(),
		Datum:      e.IsDatum(),
	}
	if tree {
		resp.Tree = e.Tree()
	}
	return resp
}

// NewDeriveResponse computes order successive derivatives of e.
func NewDeriveResponse(text string, e *algebra.Expression, order int) (DeriveResponse, error) {
	ds, err := e.NthDerivative(order)
	if err != nil {
		return DeriveResponse{Expression: text, Canonical: e.String()}, err
	}
	return DerivativesResponse(text, e, ds), nil
}

// DerivativesResponse describes derivatives ds already computed from e.
func DerivativesResponse(text string, e *algebra.Expression, ds []*algebra.Expression) DeriveResponse {
	resp := DeriveResponse{Expression: text, Canonical: e.String()}
	for _, d := range ds {
		resp.Derivatives = append(resp.Derivatives, d.String())
	}
	return resp
}

// NewEvaluateResponse reports value, the value of text at x. A value that is
// not a finite number is a calculation error.
func NewEvaluateResponse(text string, x, value float64) (EvaluateResponse, error) {
	if err := CheckFinite(text, x, value); err != nil {
		return EvaluateResponse{}, err
	}
	return EvaluateResponse{Expression: text, X: x, Value: value}, nil
}

// CheckFinite returns a calculation error when value, the value of text at x,
// is infinite or NaN.
func CheckFinite(text string, x, value float64) error {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return &algebra.CalcError{Message: fmt.Sprintf("value of %s at x=%g is %g", text, x, value)}
	}
	return nil
}

// NewFunctionsResponse lists the builtin registry.
func NewFunctionsResponse() FunctionsResponse {
	var resp FunctionsResponse
	for _, fn := range algebra.Builtins().List() {
		resp.Functions = append(resp.Functions, FunctionInfo{
			Name:        fn.Name,
			Derivative:  fn.DerivativeText(),
			Description: fn.Description,
		})
	}
	return resp
}

// NewErrorResponse classifies err. With debug set, parse errors carry the
// stack dump in the diagnostic.
func NewErrorResponse(err error, debug bool) ErrorResponse {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		offset := parseErr.Offset
		return ErrorResponse{Error: ErrorBody{
			Kind:       "parse",
			Message:    parseErr.Message,
			Offset:     &offset,
			Suggestion: parseErr.Suggestion,
			Diagnostic: parseErr.Diagnostic(debug),
		}}
	}

	var calcErr *algebra.CalcError
	if errors.As(err, &calcErr) {
		return ErrorResponse{Error: ErrorBody{Kind: "calc", Message: calcErr.Message}}
	}

	return ErrorResponse{Error: ErrorBody{Kind: "request", Message: err.Error()}}
}
