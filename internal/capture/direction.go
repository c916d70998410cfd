package capture

// Direction indicates which side of the connection sent a stream.
type Direction int

const (
	// Upstream carries client to server traffic.
	Upstream Direction = iota
	// Downstream carries server to client traffic.
	Downstream
)

func (d Direction) String() string {
	switch d {
	case Upstream:
		return "upstream"
	case Downstream:
		return "downstream"
	default:
		return "unknown"
	}
}
