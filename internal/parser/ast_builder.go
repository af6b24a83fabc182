package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder builds our internal AST from the tree-sitter CST
type ASTBuilder struct {
	filename string
	source   []byte
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{
		filename: filename,
		source:   source,
	}
}

// Build builds the AST from a tree-sitter node
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node to our internal AST node
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "module":
		return b.buildModule(tsNode)
	case "decorated_definition":
		return b.buildDecoratedDefinition(tsNode)
	case "function_definition":
		return b.buildFunctionDefinition(tsNode)
	case "lambda":
		return b.buildLambda(tsNode)
	case "class_definition":
		return b.buildClassDefinition(tsNode)
	case "if_statement":
		return b.buildIfStatement(tsNode)
	case "elif_clause":
		return b.buildElifClause(tsNode)
	case "for_statement":
		return b.buildForStatement(tsNode)
	case "while_statement":
		return b.buildWhileStatement(tsNode)
	case "try_statement":
		return b.buildTryStatement(tsNode)
	case "with_statement":
		return b.buildWithStatement(tsNode)
	case "match_statement":
		return b.buildMatchStatement(tsNode)
	case "return_statement":
		return b.buildSimpleStatement(tsNode, NodeReturn)
	case "raise_statement":
		return b.buildSimpleStatement(tsNode, NodeRaise)
	case "assert_statement":
		return b.buildSimpleStatement(tsNode, NodeAssert)
	case "pass_statement":
		return b.buildLeaf(tsNode, NodePass)
	case "break_statement":
		return b.buildLeaf(tsNode, NodeBreak)
	case "continue_statement":
		return b.buildLeaf(tsNode, NodeContinue)
	case "global_statement":
		return b.buildScopeStatement(tsNode, NodeGlobal)
	case "nonlocal_statement":
		return b.buildScopeStatement(tsNode, NodeNonlocal)
	case "delete_statement":
		return b.buildSimpleStatement(tsNode, NodeDelete)
	case "import_statement":
		return b.buildLeaf(tsNode, NodeImport)
	case "import_from_statement":
		return b.buildLeaf(tsNode, NodeImportFrom)
	case "expression_statement":
		return b.buildExpressionStatement(tsNode)
	case "assignment":
		return b.buildAssignment(tsNode)
	case "augmented_assignment":
		return b.buildAugmentedAssignment(tsNode)
	case "call":
		return b.buildCall(tsNode)
	case "attribute":
		return b.buildAttribute(tsNode)
	case "subscript":
		return b.buildSubscript(tsNode)
	case "identifier":
		return b.buildIdentifier(tsNode)
	case "boolean_operator":
		return b.buildBooleanOperator(tsNode)
	case "not_operator":
		return b.buildNotOperator(tsNode)
	case "comparison_operator":
		return b.buildComparisonOperator(tsNode)
	case "binary_operator":
		return b.buildBinaryOperator(tsNode)
	case "unary_operator":
		return b.buildUnaryOperator(tsNode)
	case "conditional_expression":
		return b.buildConditionalExpression(tsNode)
	case "await":
		return b.buildAwait(tsNode)
	case "yield":
		return b.buildGenericTyped(tsNode, NodeYield)
	case "integer", "float":
		return b.buildLiteral(tsNode, NodeNumberLiteral)
	case "string", "concatenated_string":
		return b.buildLiteral(tsNode, NodeStringLiteral)
	case "true", "false":
		return b.buildLiteral(tsNode, NodeBooleanLiteral)
	case "none":
		return b.buildLiteral(tsNode, NodeNoneLiteral)
	case "list":
		return b.buildGenericTyped(tsNode, NodeList)
	case "dictionary":
		return b.buildGenericTyped(tsNode, NodeDict)
	case "set":
		return b.buildGenericTyped(tsNode, NodeSet)
	case "tuple", "expression_list":
		return b.buildGenericTyped(tsNode, NodeTuple)
	case "list_comprehension", "dictionary_comprehension", "set_comprehension", "generator_expression":
		return b.buildGenericTyped(tsNode, NodeComprehension)
	case "keyword_argument":
		return b.buildKeywordArgument(tsNode)
	case "block":
		return b.buildBlock(tsNode)
	case "comment":
		return nil
	default:
		return b.buildGenericNode(tsNode)
	}
}

func (b *ASTBuilder) buildModule(tsNode *sitter.Node) *Node {
	node := NewNode(NodeModule)
	node.Location = b.getLocation(tsNode)
	node.Name = b.filename

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		if childNode := b.buildNode(child); childNode != nil {
			childNode.Parent = node
			node.Body = append(node.Body, childNode)
		}
	}
	return node
}

// buildDecoratedDefinition unwraps decorators onto the inner definition
func (b *ASTBuilder) buildDecoratedDefinition(tsNode *sitter.Node) *Node {
	var decorators []*Node
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() == "decorator" {
			dec := NewNode(NodeDecorator)
			dec.Location = b.getLocation(child)
			dec.Name = strings.TrimPrefix(child.Content(b.source), "@")
			decorators = append(decorators, dec)
		}
	}

	defNode := tsNode.ChildByFieldName("definition")
	inner := b.buildNode(defNode)
	if inner == nil {
		return nil
	}
	inner.Decorators = decorators
	for _, d := range decorators {
		d.Parent = inner
	}
	return inner
}

func (b *ASTBuilder) buildFunctionDefinition(tsNode *sitter.Node) *Node {
	node := NewNode(NodeFunctionDef)
	node.Location = b.getLocation(tsNode)

	if first := tsNode.Child(0); first != nil && first.Type() == "async" {
		node.Async = true
	}
	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if paramsNode := tsNode.ChildByFieldName("parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
		for _, p := range node.Params {
			p.Parent = node
		}
	}
	if retNode := tsNode.ChildByFieldName("return_type"); retNode != nil {
		node.ReturnType = b.buildTypeAnnotation(retNode)
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode, node)
	}
	return node
}

func (b *ASTBuilder) buildLambda(tsNode *sitter.Node) *Node {
	node := NewNode(NodeLambda)
	node.Location = b.getLocation(tsNode)

	if paramsNode := tsNode.ChildByFieldName("parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
		for _, p := range node.Params {
			p.Parent = node
		}
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		if body := b.buildNode(bodyNode); body != nil {
			body.Parent = node
			node.Body = []*Node{body}
		}
	}
	return node
}

func (b *ASTBuilder) buildClassDefinition(tsNode *sitter.Node) *Node {
	node := NewNode(NodeClassDef)
	node.Location = b.getLocation(tsNode)

	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if basesNode := tsNode.ChildByFieldName("superclasses"); basesNode != nil {
		for i := 0; i < int(basesNode.NamedChildCount()); i++ {
			if base := b.buildNode(basesNode.NamedChild(i)); base != nil {
				base.Parent = node
				node.Bases = append(node.Bases, base)
			}
		}
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode, node)
	}
	return node
}

// buildParameters flattens the parameter list, classifying splats and
// keyword-only parameters.
func (b *ASTBuilder) buildParameters(paramsNode *sitter.Node) []*Node {
	var params []*Node
	keywordOnly := false

	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		child := paramsNode.Child(i)
		if child == nil {
			continue
		}

		param := NewNode(NodeParameter)
		param.Location = b.getLocation(child)

		switch child.Type() {
		case "identifier":
			param.Name = child.Content(b.source)
		case "default_parameter":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				param.Name = nameNode.Content(b.source)
			}
			if valueNode := child.ChildByFieldName("value"); valueNode != nil {
				param.DefaultValue = b.buildNode(valueNode)
			}
		case "typed_parameter":
			if inner := child.NamedChild(0); inner != nil {
				param.Name = inner.Content(b.source)
			}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				param.TypeAnnotation = b.buildTypeAnnotation(typeNode)
			}
		case "typed_default_parameter":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				param.Name = nameNode.Content(b.source)
			}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				param.TypeAnnotation = b.buildTypeAnnotation(typeNode)
			}
			if valueNode := child.ChildByFieldName("value"); valueNode != nil {
				param.DefaultValue = b.buildNode(valueNode)
			}
		case "list_splat_pattern":
			param.Name = strings.TrimPrefix(child.Content(b.source), "*")
			param.Kind = ParamStarArgs
			keywordOnly = true
		case "dictionary_splat_pattern":
			param.Name = strings.TrimPrefix(child.Content(b.source), "**")
			param.Kind = ParamKwArgs
		case "keyword_separator":
			keywordOnly = true
			continue
		default:
			continue
		}

		if keywordOnly && param.Kind == ParamPositional {
			param.Kind = ParamKeywordOnly
		}
		params = append(params, param)
	}
	return params
}

func (b *ASTBuilder) buildTypeAnnotation(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTypeAnnotation)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)
	return node
}

// buildStatements builds a statement list from a block node, linking
// parents.
func (b *ASTBuilder) buildStatements(blockNode *sitter.Node, parent *Node) []*Node {
	var stmts []*Node
	for i := 0; i < int(blockNode.NamedChildCount()); i++ {
		child := blockNode.NamedChild(i)
		if stmt := b.buildNode(child); stmt != nil {
			stmt.Parent = parent
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (b *ASTBuilder) buildBlock(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBlock)
	node.Location = b.getLocation(tsNode)
	node.Body = b.buildStatements(tsNode, node)
	return node
}

func (b *ASTBuilder) buildIfStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIf)
	node.Location = b.getLocation(tsNode)

	if condNode := tsNode.ChildByFieldName("condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
		if node.Test != nil {
			node.Test.Parent = node
		}
	}
	if consNode := tsNode.ChildByFieldName("consequence"); consNode != nil {
		node.Body = b.buildStatements(consNode, node)
	}

	// elif_clause and else_clause both arrive as "alternative" children
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "elif_clause":
			if alt := b.buildElifClause(child); alt != nil {
				alt.Parent = node
				node.OrElse = append(node.OrElse, alt)
			}
		case "else_clause":
			if bodyNode := child.ChildByFieldName("body"); bodyNode != nil {
				node.OrElse = append(node.OrElse, b.buildStatements(bodyNode, node)...)
			}
		}
	}
	return node
}

// buildElifClause builds an elif as a nested If node
func (b *ASTBuilder) buildElifClause(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIf)
	node.Location = b.getLocation(tsNode)

	if condNode := tsNode.ChildByFieldName("condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
		if node.Test != nil {
			node.Test.Parent = node
		}
	}
	if consNode := tsNode.ChildByFieldName("consequence"); consNode != nil {
		node.Body = b.buildStatements(consNode, node)
	}
	return node
}

func (b *ASTBuilder) buildForStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeFor)
	node.Location = b.getLocation(tsNode)

	if first := tsNode.Child(0); first != nil && first.Type() == "async" {
		node.Async = true
	}
	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		node.Target = b.buildNode(leftNode)
		if node.Target != nil {
			node.Target.Parent = node
		}
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Iter = b.buildNode(rightNode)
		if node.Iter != nil {
			node.Iter.Parent = node
		}
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode, node)
	}
	if altNode := tsNode.ChildByFieldName("alternative"); altNode != nil {
		if bodyNode := altNode.ChildByFieldName("body"); bodyNode != nil {
			node.OrElse = b.buildStatements(bodyNode, node)
		}
	}
	return node
}

func (b *ASTBuilder) buildWhileStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeWhile)
	node.Location = b.getLocation(tsNode)

	if condNode := tsNode.ChildByFieldName("condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
		if node.Test != nil {
			node.Test.Parent = node
		}
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode, node)
	}
	if altNode := tsNode.ChildByFieldName("alternative"); altNode != nil {
		if bodyNode := altNode.ChildByFieldName("body"); bodyNode != nil {
			node.OrElse = b.buildStatements(bodyNode, node)
		}
	}
	return node
}

func (b *ASTBuilder) buildTryStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTry)
	node.Location = b.getLocation(tsNode)

	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode, node)
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "except_clause", "except_group_clause":
			handler := NewNode(NodeExceptHandler)
			handler.Location = b.getLocation(child)
			handler.Parent = node
			for j := 0; j < int(child.NamedChildCount()); j++ {
				sub := child.NamedChild(j)
				if sub.Type() == "block" {
					handler.Body = b.buildStatements(sub, handler)
				} else if handler.Test == nil {
					handler.Test = b.buildNode(sub)
					if handler.Test != nil {
						handler.Test.Parent = handler
					}
				}
			}
			node.Handlers = append(node.Handlers, handler)
		case "else_clause":
			if bodyNode := child.ChildByFieldName("body"); bodyNode != nil {
				node.OrElse = b.buildStatements(bodyNode, node)
			}
		case "finally_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if sub := child.NamedChild(j); sub.Type() == "block" {
					node.Finalizer = b.buildStatements(sub, node)
				}
			}
		}
	}
	return node
}

func (b *ASTBuilder) buildWithStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeWith)
	node.Location = b.getLocation(tsNode)

	if first := tsNode.Child(0); first != nil && first.Type() == "async" {
		node.Async = true
	}
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child.Type() == "with_clause" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if item := b.buildNode(child.NamedChild(j)); item != nil {
					node.AddChild(item)
				}
			}
		}
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode, node)
	}
	return node
}

func (b *ASTBuilder) buildMatchStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeMatch)
	node.Location = b.getLocation(tsNode)

	if subjNode := tsNode.ChildByFieldName("subject"); subjNode != nil {
		node.Test = b.buildNode(subjNode)
		if node.Test != nil {
			node.Test.Parent = node
		}
	}
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child.Type() != "case_clause" {
			continue
		}
		caseNode := NewNode(NodeCase)
		caseNode.Location = b.getLocation(child)
		caseNode.Parent = node
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if sub := child.NamedChild(j); sub.Type() == "block" {
				caseNode.Body = b.buildStatements(sub, caseNode)
			}
		}
		node.Body = append(node.Body, caseNode)
	}
	return node
}

// buildSimpleStatement builds return/raise/assert/delete nodes, keeping
// their expression children walkable.
func (b *ASTBuilder) buildSimpleStatement(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.buildNode(tsNode.NamedChild(i)); child != nil {
			node.AddChild(child)
			if node.Value == nil {
				node.Value = child
			}
		}
	}
	return node
}

// buildScopeStatement builds global/nonlocal declarations, recording the
// declared names.
func (b *ASTBuilder) buildScopeStatement(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	var names []string
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child.Type() == "identifier" {
			names = append(names, child.Content(b.source))
			if id := b.buildIdentifier(child); id != nil {
				node.AddChild(id)
			}
		}
	}
	node.Name = strings.Join(names, ",")
	return node
}

func (b *ASTBuilder) buildLeaf(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)
	return node
}

func (b *ASTBuilder) buildExpressionStatement(tsNode *sitter.Node) *Node {
	// Unwrap single-expression statements so assignments and calls appear
	// directly in statement position, the way detectors expect them.
	if tsNode.NamedChildCount() == 1 {
		child := tsNode.NamedChild(0)
		switch child.Type() {
		case "assignment", "augmented_assignment":
			return b.buildNode(child)
		}
	}

	node := NewNode(NodeExpressionStatement)
	node.Location = b.getLocation(tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.buildNode(tsNode.NamedChild(i)); child != nil {
			node.AddChild(child)
			if node.Value == nil {
				node.Value = child
			}
		}
	}
	return node
}

func (b *ASTBuilder) buildAssignment(tsNode *sitter.Node) *Node {
	var node *Node
	if typeNode := tsNode.ChildByFieldName("type"); typeNode != nil {
		node = NewNode(NodeAnnAssign)
		node.TypeAnnotation = b.buildTypeAnnotation(typeNode)
	} else {
		node = NewNode(NodeAssign)
	}
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		if target := b.buildNode(leftNode); target != nil {
			target.Parent = node
			node.Targets = append(node.Targets, target)
		}
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Value = b.buildNode(rightNode)
		if node.Value != nil {
			node.Value.Parent = node
		}
	}
	return node
}

func (b *ASTBuilder) buildAugmentedAssignment(tsNode *sitter.Node) *Node {
	node := NewNode(NodeAugAssign)
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		if target := b.buildNode(leftNode); target != nil {
			target.Parent = node
			node.Targets = append(node.Targets, target)
		}
	}
	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Value = b.buildNode(rightNode)
		if node.Value != nil {
			node.Value.Parent = node
		}
	}
	return node
}

func (b *ASTBuilder) buildCall(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCall)
	node.Location = b.getLocation(tsNode)

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

// calleeName extracts a flat name for a call target; attribute access
// yields the rightmost attribute name.
func calleeName(callee *Node) string {
	switch callee.Type {
	case NodeName:
		return callee.Name
	case NodeAttribute:
		return callee.Name
	}
	return ""
}

func (b *ASTBuilder) buildAttribute(tsNode *sitter.Node) *Node {
	node := NewNode(NodeAttribute)
	node.Location = b.getLocation(tsNode)

	if objNode := tsNode.ChildByFieldName("object"); objNode != nil {
		node.Object = b.buildNode(objNode)
		if node.Object != nil {
			node.Object.Parent = node
		}
	}
	if attrNode := tsNode.ChildByFieldName("attribute"); attrNode != nil {
		node.Name = attrNode.Content(b.source)
	}
	return node
}

func (b *ASTBuilder) buildSubscript(tsNode *sitter.Node) *Node {
	node := NewNode(NodeSubscript)
	node.Location = b.getLocation(tsNode)

	if valueNode := tsNode.ChildByFieldName("value"); valueNode != nil {
		node.Object = b.buildNode(valueNode)
		if node.Object != nil {
			node.Object.Parent = node
		}
	}
	if subNode := tsNode.ChildByFieldName("subscript"); subNode != nil {
		if sub := b.buildNode(subNode); sub != nil {
			node.AddChild(sub)
		}
	}
	return node
}

func (b *ASTBuilder) buildIdentifier(tsNode *sitter.Node) *Node {
	node := NewNode(NodeName)
	node.Location = b.getLocation(tsNode)
	node.Name = tsNode.Content(b.source)
	return node
}

func (b *ASTBuilder) buildBooleanOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBoolOp)
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
		if node.Left != nil {
			node.Left.Parent = node
		}
	}
	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
		if node.Right != nil {
			node.Right.Parent = node
		}
	}
	return node
}

func (b *ASTBuilder) buildNotOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeNotOp)
	node.Location = b.getLocation(tsNode)
	node.Operator = "not"
	if argNode := tsNode.ChildByFieldName("argument"); argNode != nil {
		node.Operand = b.buildNode(argNode)
		if node.Operand != nil {
			node.Operand.Parent = node
		}
	}
	return node
}

func (b *ASTBuilder) buildComparisonOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCompare)
	node.Location = b.getLocation(tsNode)

	var ops []string
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		if child.IsNamed() {
			if sub := b.buildNode(child); sub != nil {
				node.AddChild(sub)
				if node.Left == nil {
					node.Left = sub
				} else if node.Right == nil {
					node.Right = sub
				}
			}
		} else {
			ops = append(ops, child.Type())
		}
	}
	node.Operator = strings.Join(ops, " ")
	return node
}

func (b *ASTBuilder) buildBinaryOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBinOp)
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
		if node.Left != nil {
			node.Left.Parent = node
		}
	}
	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
		if node.Right != nil {
			node.Right.Parent = node
		}
	}
	return node
}

func (b *ASTBuilder) buildUnaryOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeUnaryOp)
	node.Location = b.getLocation(tsNode)

	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}
	if argNode := tsNode.ChildByFieldName("argument"); argNode != nil {
		node.Operand = b.buildNode(argNode)
		if node.Operand != nil {
			node.Operand.Parent = node
		}
	}

	// A unary minus before a number is still a literal for detection
	// purposes (-1, -273.15).
	if node.Operator == "-" && node.Operand != nil && node.Operand.Type == NodeNumberLiteral {
		lit := NewNode(NodeNumberLiteral)
		lit.Location = node.Location
		lit.Raw = "-" + node.Operand.Raw
		return lit
	}
	return node
}

func (b *ASTBuilder) buildConditionalExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeConditional)
	node.Location = b.getLocation(tsNode)

	// Children arrive as: consequence, condition, alternative
	named := make([]*Node, 0, 3)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.buildNode(tsNode.NamedChild(i)); child != nil {
			child.Parent = node
			named = append(named, child)
		}
	}
	if len(named) > 0 {
		node.Body = named[:1]
	}
	if len(named) > 1 {
		node.Test = named[1]
	}
	if len(named) > 2 {
		node.OrElse = named[2:3]
	}
	return node
}

func (b *ASTBuilder) buildAwait(tsNode *sitter.Node) *Node {
	node := NewNode(NodeAwait)
	node.Location = b.getLocation(tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.buildNode(tsNode.NamedChild(i)); child != nil {
			node.AddChild(child)
			node.Operand = child
		}
	}
	return node
}

func (b *ASTBuilder) buildKeywordArgument(tsNode *sitter.Node) *Node {
	node := NewNode(NodeKeywordArg)
	node.Location = b.getLocation(tsNode)
	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if valueNode := tsNode.ChildByFieldName("value"); valueNode != nil {
		node.Value = b.buildNode(valueNode)
		if node.Value != nil {
			node.Value.Parent = node
		}
	}
	return node
}

func (b *ASTBuilder) buildLiteral(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)
	return node
}

// buildGenericTyped keeps a known node type but only materializes named
// children generically.
func (b *ASTBuilder) buildGenericTyped(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.buildNode(tsNode.NamedChild(i)); child != nil {
			node.AddChild(child)
		}
	}
	return node
}

func (b *ASTBuilder) buildGenericNode(tsNode *sitter.Node) *Node {
	node := NewNode(NodeGeneric)
	node.Location = b.getLocation(tsNode)
	node.Name = tsNode.Type()
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.buildNode(tsNode.NamedChild(i)); child != nil {
			node.AddChild(child)
		}
	}
	return node
}

func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}
