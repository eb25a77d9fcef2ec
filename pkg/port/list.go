package port

// List is a node's full port surface: a dense, indexed collection of
// Descriptions rebuilt whenever the node's I/O layout changes.
type List struct {
	ports []Description
}

// NewList returns an empty port list.
func NewList() *List {
	return &List{}
}

// Reset clears the list so a node can rebuild its port layout from
// scratch. NumPorts is only constant between Reset calls.
func (l *List) Reset() {
	l.ports = l.ports[:0]
}

// Add appends a port, assigning it the next dense Index and the next
// Channel ordinal for its (Type, Flow) pair.
func (l *List) Add(typ Type, flow Flow, symbol, name string) Description {
	channel := int32(0)
	for _, p := range l.ports {
		if p.Type == typ && p.Flow == flow {
			channel++
		}
	}
	d := Description{
		Index:   uint32(len(l.ports)),
		Channel: channel,
		Type:    typ,
		Flow:    flow,
		Symbol:  symbol,
		Name:    name,
	}
	l.ports = append(l.ports, d)
	return d
}

// NumPorts returns the total number of ports, all types and flows.
func (l *List) NumPorts() int {
	return len(l.ports)
}

// All returns the full port list in index order. Callers must not
// mutate the returned slice.
func (l *List) All() []Description {
	return l.ports
}

// At returns the port at the given dense index.
func (l *List) At(index uint32) (Description, bool) {
	if int(index) >= len(l.ports) {
		return Description{}, false
	}
	return l.ports[index], true
}

// CountOf returns the number of ports matching the given type and flow.
func (l *List) CountOf(typ Type, flow Flow) int32 {
	count := int32(0)
	for _, p := range l.ports {
		if p.Type == typ && p.Flow == flow {
			count++
		}
	}
	return count
}

// ForChannel is the inverse of ForPort: it maps a (type, channel,
// flow) triple to the port description carrying that channel.
func (l *List) ForChannel(typ Type, channel int32, flow Flow) (Description, bool) {
	for _, p := range l.ports {
		if p.Type == typ && p.Flow == flow && p.Channel == channel {
			return p, true
		}
	}
	return Description{}, false
}

// ForPort is the inverse of ForChannel: it maps a dense port index to
// its (type, channel, flow) identity.
func (l *List) ForPort(index uint32) (Description, bool) {
	return l.At(index)
}
