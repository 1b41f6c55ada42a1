package model

// Canvas node kinds.
const (
	NodeKindNote  = "note"
	NodeKindGroup = "group"
	NodeKindTask  = "task"
)

// CanvasNode is a positioned element on the layout canvas.
type CanvasNode struct {
	Key   string  `json:"key"`
	Kind  string  `json:"kind"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// SetKey sets the database key for this node.
func (n *CanvasNode) SetKey(key string) {
	n.Key = key
}

// GetKey returns the database key for this node.
func (n *CanvasNode) GetKey() string {
	return n.Key
}

// Fields returns the node as a command field map.
func (n *CanvasNode) Fields() map[string]any {
	return toFields(n)
}

// CanvasNodeFromFields rebuilds a node from a command field map.
func CanvasNodeFromFields(m map[string]any) CanvasNode {
	var n CanvasNode
	fromFields(m, &n)
	return n
}
