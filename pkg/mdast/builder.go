package mdast

// NewNode creates a new node of the specified kind.
// The node has no parent, children or source range.
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// NewBlock creates a block node starting at offset.
func NewBlock(kind NodeKind, start, end int) *Node {
	return &Node{
		Kind:  kind,
		Range: SourceRange{StartOffset: start, EndOffset: end},
		Block: NewBlockAttrs(),
	}
}

// NewInline creates an inline node covering [start, end).
func NewInline(kind NodeKind, start, end int) *Node {
	return &Node{
		Kind:   kind,
		Range:  SourceRange{StartOffset: start, EndOffset: end},
		Inline: NewInlineAttrs(),
	}
}

// AppendChild appends a child node to a parent.
// It maintains the parent/child/sibling relationships correctly.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}

	if child.Parent != nil {
		RemoveChild(child.Parent, child)
	}

	child.Parent = parent
	child.Prev = parent.LastChild
	child.Next = nil

	if parent.LastChild != nil {
		parent.LastChild.Next = child
	} else {
		parent.FirstChild = child
	}

	parent.LastChild = child
}

// InsertAfter inserts newNode after sibling.
// sibling must have a parent.
func InsertAfter(sibling, newNode *Node) {
	if sibling == nil || newNode == nil || sibling.Parent == nil {
		return
	}

	parent := sibling.Parent

	if newNode.Parent != nil {
		RemoveChild(newNode.Parent, newNode)
	}

	newNode.Parent = parent
	newNode.Prev = sibling
	newNode.Next = sibling.Next

	if sibling.Next != nil {
		sibling.Next.Prev = newNode
	} else {
		parent.LastChild = newNode
	}

	sibling.Next = newNode
}

// RemoveChild removes a child from its parent.
func RemoveChild(parent, child *Node) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}

	if child.Prev != nil {
		child.Prev.Next = child.Next
	} else {
		parent.FirstChild = child.Next
	}

	if child.Next != nil {
		child.Next.Prev = child.Prev
	} else {
		parent.LastChild = child.Prev
	}

	child.Parent = nil
	child.Prev = nil
	child.Next = nil
}

// ExtendEnd grows the range of n and its ancestors so they end at or after end.
func ExtendEnd(n *Node, end int) {
	for p := n; p != nil; p = p.Parent {
		if p.Range.EndOffset < end {
			p.Range.EndOffset = end
		}
	}
}
