package rangeworkers

// ConnectedPool is the ordered set of worker connections held once the
// expected number of workers has connected.
type ConnectedPool struct {
	conns []*Conn
}

// Len returns the number of connections.
func (p *ConnectedPool) Len() int { return len(p.conns) }

// Conns returns the connections in arrival order.
func (p *ConnectedPool) Conns() []*Conn {
	conns := make([]*Conn, len(p.conns))
	copy(conns, p.conns)
	return conns
}

// Close closes every connection in the pool.
func (p *ConnectedPool) Close() {
	for _, c := range p.conns {
		c.Close()
	}
}
