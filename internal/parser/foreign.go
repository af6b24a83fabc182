package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ForeignBuilder maps a non-native grammar's concrete tree onto the
// internal AST. The mapping is coarse: enough structure survives for
// size, complexity, position and literal checks, while constructs with
// no counterpart become generic nodes.
type ForeignBuilder struct {
	filename string
	source   []byte
}

// NewForeignBuilder creates a builder for one non-native source file
func NewForeignBuilder(filename string, source []byte) *ForeignBuilder {
	return &ForeignBuilder{filename: filename, source: source}
}

// Build converts the concrete tree into the internal AST
func (b *ForeignBuilder) Build(root *sitter.Node) *Node {
	node := b.buildNode(root)
	if node == nil {
		node = NewNode(NodeModule)
		node.Name = b.filename
	}
	return node
}

func (b *ForeignBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "program":
		return b.buildContainer(tsNode, NodeModule, true)

	case "function_declaration", "function_expression", "generator_function_declaration",
		"method_definition", "arrow_function", "function":
		return b.buildFunction(tsNode)

	case "class_declaration", "class":
		return b.buildClass(tsNode)

	case "statement_block", "class_body", "switch_body":
		return b.buildContainer(tsNode, NodeBlock, true)

	case "if_statement":
		return b.buildBranch(tsNode, NodeIf)
	case "while_statement", "do_statement":
		return b.buildBranch(tsNode, NodeWhile)
	case "for_statement", "for_in_statement", "for_of_statement":
		return b.buildBranch(tsNode, NodeFor)
	case "switch_case", "switch_default":
		return b.buildContainer(tsNode, NodeCase, true)
	case "catch_clause":
		return b.buildContainer(tsNode, NodeExceptHandler, true)
	case "try_statement":
		return b.buildContainer(tsNode, NodeTry, true)
	case "ternary_expression":
		return b.buildBranch(tsNode, NodeConditional)

	case "return_statement":
		return b.buildContainer(tsNode, NodeReturn, false)
	case "throw_statement":
		return b.buildContainer(tsNode, NodeRaise, false)

	case "binary_expression":
		return b.buildBinary(tsNode)
	case "call_expression", "new_expression":
		return b.buildCall(tsNode)

	case "identifier", "property_identifier", "shorthand_property_identifier":
		node := b.leaf(tsNode, NodeName)
		node.Name = node.Raw
		return node
	case "number":
		return b.leaf(tsNode, NodeNumberLiteral)
	case "string", "template_string":
		return b.leaf(tsNode, NodeStringLiteral)
	case "true", "false":
		return b.leaf(tsNode, NodeBooleanLiteral)
	case "null", "undefined":
		return b.leaf(tsNode, NodeNoneLiteral)

	case "comment":
		return nil

	default:
		return b.buildContainer(tsNode, NodeGeneric, false)
	}
}

func (b *ForeignBuilder) leaf(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.location(tsNode)
	node.Raw = tsNode.Content(b.source)
	return node
}

// buildContainer converts all named children; asBody additionally files
// them as statement-position children.
func (b *ForeignBuilder) buildContainer(tsNode *sitter.Node, nodeType NodeType, asBody bool) *Node {
	node := NewNode(nodeType)
	node.Location = b.location(tsNode)
	if nodeType == NodeModule {
		node.Name = b.filename
	}
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.buildNode(tsNode.NamedChild(i)); child != nil {
			node.AddChild(child)
			if asBody {
				node.Body = append(node.Body, child)
			}
		}
	}
	return node
}

func (b *ForeignBuilder) buildFunction(tsNode *sitter.Node) *Node {
	node := NewNode(NodeFunctionDef)
	node.Location = b.location(tsNode)

	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if paramsNode := tsNode.ChildByFieldName("parameters"); paramsNode != nil {
		for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
			p := paramsNode.NamedChild(i)
			param := NewNode(NodeParameter)
			param.Location = b.location(p)
			param.Kind = ParamPositional
			if p.Type() == "identifier" {
				param.Name = p.Content(b.source)
			} else if id := p.ChildByFieldName("pattern"); id != nil {
				param.Name = id.Content(b.source)
			}
			param.Parent = node
			node.Params = append(node.Params, param)
		}
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		if body := b.buildNode(bodyNode); body != nil {
			node.AddChild(body)
			if body.Type == NodeBlock {
				node.Body = body.Body
			} else {
				node.Body = []*Node{body}
			}
		}
	}
	return node
}

func (b *ForeignBuilder) buildClass(tsNode *sitter.Node) *Node {
	node := NewNode(NodeClassDef)
	node.Location = b.location(tsNode)

	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		if body := b.buildNode(bodyNode); body != nil {
			node.AddChild(body)
			node.Body = body.Body
		}
	}
	return node
}

func (b *ForeignBuilder) buildBranch(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.location(tsNode)

	if condNode := tsNode.ChildByFieldName("condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
		if node.Test != nil {
			node.Test.Parent = node
		}
	}
	if consequence := tsNode.ChildByFieldName("consequence"); consequence != nil {
		if body := b.buildNode(consequence); body != nil {
			node.AddChild(body)
			if body.Type == NodeBlock {
				node.Body = body.Body
			} else {
				node.Body = []*Node{body}
			}
		}
	} else if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		if body := b.buildNode(bodyNode); body != nil {
			node.AddChild(body)
			if body.Type == NodeBlock {
				node.Body = body.Body
			} else {
				node.Body = []*Node{body}
			}
		}
	}
	if alt := tsNode.ChildByFieldName("alternative"); alt != nil {
		if orElse := b.buildNode(alt); orElse != nil {
			node.AddChild(orElse)
			node.OrElse = []*Node{orElse}
		}
	}
	return node
}

func (b *ForeignBuilder) buildBinary(tsNode *sitter.Node) *Node {
	op := ""
	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		op = opNode.Content(b.source)
	}

	var node *Node
	switch op {
	case "&&", "||", "??":
		node = NewNode(NodeBoolOp)
	case "==", "===", "!=", "!==", "<", "<=", ">", ">=":
		node = NewNode(NodeCompare)
	default:
		node = NewNode(NodeBinOp)
	}
	node.Location = b.location(tsNode)
	node.Operator = op

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
		if node.Left != nil {
			node.Left.Parent = node
		}
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
		if node.Right != nil {
			node.Right.Parent = node
		}
	}
	return node
}

func (b *ForeignBuilder) buildCall(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCall)
	node.Location = b.location(tsNode)

	if fnNode := tsNode.ChildByFieldName("function"); fnNode != nil {
		node.Callee = b.buildNode(fnNode)
		if node.Callee != nil {
			node.Callee.Parent = node
			node.Name = calleeName(node.Callee)
		}
	}
	if argsNode := tsNode.ChildByFieldName("arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			if arg := b.buildNode(argsNode.NamedChild(i)); arg != nil {
				arg.Parent = node
				node.Arguments = append(node.Arguments, arg)
			}
		}
	}
	return node
}

func (b *ForeignBuilder) location(tsNode *sitter.Node) Location {
	start := tsNode.StartPoint()
	end := tsNode.EndPoint()
	return Location{
		File:      b.filename,
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
	}
}
