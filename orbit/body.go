package orbit

import "fmt"

// Body identifies one of the animated objects.
type Body int

const (
	Sun Body = iota
	Mercury
	Venus
	Earth
	Moon
	Mars
	Jupiter
	Saturn
	Rahu // ascending lunar node
	Ketu // descending lunar node

	NumBodies = int(Ketu) + 1
)

var bodyNames = [NumBodies]string{
	"Sun", "Mercury", "Venus", "Earth", "Moon",
	"Mars", "Jupiter", "Saturn", "Rahu", "Ketu",
}

func (b Body) String() string {
	if b < 0 || int(b) >= NumBodies {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// Valid reports whether b is one of the ten known bodies.
func (b Body) Valid() bool {
	return b >= 0 && int(b) < NumBodies
}

// Bodies returns every body in declaration order.
func Bodies() []Body {
	out := make([]Body, NumBodies)
	for i := range out {
		out[i] = Body(i)
	}
	return out
}

// ParseBody resolves a case-sensitive display name.
func ParseBody(name string) (Body, error) {
	for i, n := range bodyNames {
		if n == name {
			return Body(i), nil
		}
	}
	return 0, fmt.Errorf("unknown body %q", name)
}
