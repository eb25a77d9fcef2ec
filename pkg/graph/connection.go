package graph

// Connection is a directed arc from one node's output port to another
// node's input port.
type Connection struct {
	SrcNode uint32
	SrcPort uint32
	DstNode uint32
	DstPort uint32
}

// less orders connections by the total order on the quadruple
// (src_node, src_port, dst_node, dst_port), giving the connection set
// O(log n) membership lookup via sort.Search.
func (c Connection) less(other Connection) bool {
	if c.SrcNode != other.SrcNode {
		return c.SrcNode < other.SrcNode
	}
	if c.SrcPort != other.SrcPort {
		return c.SrcPort < other.SrcPort
	}
	if c.DstNode != other.DstNode {
		return c.DstNode < other.DstNode
	}
	return c.DstPort < other.DstPort
}

func (c Connection) equal(other Connection) bool {
	return c == other
}
