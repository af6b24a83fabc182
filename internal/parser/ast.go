package parser

import "fmt"

// NodeType represents the type of AST node
type NodeType string

// Python AST node types
const (
	// Module structure
	NodeModule NodeType = "Module"
	NodeBlock  NodeType = "Block"

	// Definitions
	NodeFunctionDef NodeType = "FunctionDef"
	NodeLambda      NodeType = "Lambda"
	NodeClassDef    NodeType = "ClassDef"
	NodeDecorator   NodeType = "Decorator"
	NodeParameter   NodeType = "Parameter"

	// Control flow statements
	NodeIf       NodeType = "If"
	NodeFor      NodeType = "For"
	NodeWhile    NodeType = "While"
	NodeBreak    NodeType = "Break"
	NodeContinue NodeType = "Continue"
	NodeReturn   NodeType = "Return"
	NodeRaise    NodeType = "Raise"
	NodeAssert   NodeType = "Assert"
	NodePass     NodeType = "Pass"
	NodeWith     NodeType = "With"
	NodeMatch    NodeType = "Match"
	NodeCase     NodeType = "Case"

	// Exception handling
	NodeTry           NodeType = "Try"
	NodeExceptHandler NodeType = "ExceptHandler"
	NodeFinally       NodeType = "Finally"

	// Simple statements
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeAssign              NodeType = "Assign"
	NodeAugAssign           NodeType = "AugAssign"
	NodeAnnAssign           NodeType = "AnnAssign"
	NodeGlobal              NodeType = "Global"
	NodeNonlocal            NodeType = "Nonlocal"
	NodeDelete              NodeType = "Delete"
	NodeImport              NodeType = "Import"
	NodeImportFrom          NodeType = "ImportFrom"

	// Expressions
	NodeCall          NodeType = "Call"
	NodeAttribute     NodeType = "Attribute"
	NodeSubscript     NodeType = "Subscript"
	NodeName          NodeType = "Name"
	NodeBoolOp        NodeType = "BoolOp"
	NodeNotOp         NodeType = "NotOp"
	NodeCompare       NodeType = "Compare"
	NodeBinOp         NodeType = "BinOp"
	NodeUnaryOp       NodeType = "UnaryOp"
	NodeConditional   NodeType = "Conditional"
	NodeAwait         NodeType = "Await"
	NodeYield         NodeType = "Yield"
	NodeStarred       NodeType = "Starred"
	NodeKeywordArg    NodeType = "KeywordArg"
	NodeComprehension NodeType = "Comprehension"

	// Literals and containers
	NodeNumberLiteral  NodeType = "NumberLiteral"
	NodeStringLiteral  NodeType = "StringLiteral"
	NodeBooleanLiteral NodeType = "BooleanLiteral"
	NodeNoneLiteral    NodeType = "NoneLiteral"
	NodeList           NodeType = "List"
	NodeDict           NodeType = "Dict"
	NodeSet            NodeType = "Set"
	NodeTuple          NodeType = "Tuple"

	// Type annotations
	NodeTypeAnnotation NodeType = "TypeAnnotation"

	// Catch-all for grammar nodes with no dedicated mapping
	NodeGeneric NodeType = "Generic"
)

// ParameterKind distinguishes ordinary parameters from splats
type ParameterKind int

const (
	ParamPositional ParameterKind = iota
	ParamStarArgs                 // *args
	ParamKwArgs                   // **kwargs
	ParamKeywordOnly              // after a bare *
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node represents an AST node
type Node struct {
	Type     NodeType
	Children []*Node
	Location Location
	Parent   *Node

	// Name of a function/class/parameter/identifier/attribute
	Name string

	// Raw holds the literal source text for literal nodes
	Raw string

	// Function and class fields
	Params     []*Node // Function parameters
	Body       []*Node // Function/class/block body
	Decorators []*Node
	Bases      []*Node // Class base list
	Async      bool

	// Parameter fields
	Kind           ParameterKind
	DefaultValue   *Node
	TypeAnnotation *Node
	ReturnType     *Node

	// Control flow fields
	Test      *Node   // Condition for if/while/conditional
	OrElse    []*Node // else branch / loop else / elif chain
	Handlers  []*Node // Except handlers
	Finalizer []*Node // Finally block body

	// For loop fields
	Target *Node // Loop variable
	Iter   *Node // Iterated expression

	// Expression fields
	Left      *Node
	Right     *Node
	Operator  string
	Operand   *Node   // Unary operand
	Callee    *Node   // Function being called
	Arguments []*Node // Call arguments
	Object    *Node   // Object in attribute access
	Value     *Node   // Assigned value / keyword value
	Targets   []*Node // Assignment targets
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{Type: nodeType}
}

// AddChild adds a child node and links its parent pointer
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk traverses the AST depth-first and calls the visitor for each node.
// If the visitor returns false, traversal of that branch stops.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}

	for _, c := range n.Children {
		c.Walk(visitor)
	}
	for _, p := range n.Params {
		p.Walk(visitor)
	}
	for _, s := range n.Body {
		s.Walk(visitor)
	}
	for _, d := range n.Decorators {
		d.Walk(visitor)
	}
	for _, b := range n.Bases {
		b.Walk(visitor)
	}
	for _, s := range n.OrElse {
		s.Walk(visitor)
	}
	for _, h := range n.Handlers {
		h.Walk(visitor)
	}
	for _, s := range n.Finalizer {
		s.Walk(visitor)
	}
	for _, a := range n.Arguments {
		a.Walk(visitor)
	}
	for _, t := range n.Targets {
		t.Walk(visitor)
	}

	for _, single := range []*Node{
		n.DefaultValue, n.TypeAnnotation, n.ReturnType,
		n.Test, n.Target, n.Iter,
		n.Left, n.Right, n.Operand, n.Callee, n.Object, n.Value,
	} {
		single.Walk(visitor)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsFunction returns true if the node defines a function
func (n *Node) IsFunction() bool {
	return n.Type == NodeFunctionDef || n.Type == NodeLambda
}

// IsStatement returns true if the node is a statement
func (n *Node) IsStatement() bool {
	switch n.Type {
	case NodeIf, NodeFor, NodeWhile, NodeTry, NodeWith, NodeMatch,
		NodeReturn, NodeRaise, NodeAssert, NodePass,
		NodeBreak, NodeContinue, NodeGlobal, NodeNonlocal, NodeDelete,
		NodeAssign, NodeAugAssign, NodeAnnAssign,
		NodeImport, NodeImportFrom,
		NodeExpressionStatement, NodeFunctionDef, NodeClassDef:
		return true
	}
	return false
}

// IsLiteral returns true if the node is a literal value
func (n *Node) IsLiteral() bool {
	switch n.Type {
	case NodeNumberLiteral, NodeStringLiteral, NodeBooleanLiteral, NodeNoneLiteral:
		return true
	}
	return false
}

// IsBranching returns true for nodes that add a decision point to
// cyclomatic complexity.
func (n *Node) IsBranching() bool {
	switch n.Type {
	case NodeIf, NodeFor, NodeWhile, NodeExceptHandler, NodeConditional,
		NodeCase, NodeAssert, NodeComprehension:
		return true
	}
	return false
}

// PositionalParams returns the parameters counted against the positional
// parameter threshold, excluding splats and a leading self/cls receiver.
func (n *Node) PositionalParams() []*Node {
	params := make([]*Node, 0, len(n.Params))
	for i, p := range n.Params {
		if p.Kind != ParamPositional {
			continue
		}
		if i == 0 && (p.Name == "self" || p.Name == "cls") {
			continue
		}
		params = append(params, p)
	}
	return params
}

// EnclosingFunction walks parent pointers to the nearest function definition
func (n *Node) EnclosingFunction() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == NodeFunctionDef || p.Type == NodeLambda {
			return p
		}
	}
	return nil
}

// EnclosingClass walks parent pointers to the nearest class definition
func (n *Node) EnclosingClass() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == NodeClassDef {
			return p
		}
	}
	return nil
}
