// internal/portref/ref.go
package portref

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalid is wrapped by every Parse error.
var ErrInvalid = errors.New("invalid port reference")

var (
	nodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	portRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Ref points at one port of one node.
type Ref struct {
	Node string
	Port string
}

// New builds a Ref without validating it.
func New(node, port string) Ref {
	return Ref{Node: node, Port: port}
}

// String renders the canonical `node.port` form.
func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Node + "." + r.Port
}

// IsZero reports whether r is the empty reference.
func (r Ref) IsZero() bool {
	return r.Node == "" && r.Port == ""
}

// Parse reads a `node.port` reference.
func Parse(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, fmt.Errorf("%w: reference cannot be empty", ErrInvalid)
	}

	node, port, ok := strings.Cut(raw, ".")
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q has no port, expected node.port", ErrInvalid, raw)
	}
	if strings.Contains(port, ".") {
		return Ref{}, fmt.Errorf("%w: %q has too many segments, expected node.port", ErrInvalid, raw)
	}
	if !nodeRegex.MatchString(node) || node == "-" {
		return Ref{}, fmt.Errorf("%w: invalid node segment %q", ErrInvalid, node)
	}
	if !portRegex.MatchString(port) {
		return Ref{}, fmt.Errorf("%w: invalid port segment %q", ErrInvalid, port)
	}
	return Ref{Node: node, Port: port}, nil
}

// MustParse is Parse for references known to be valid. It panics otherwise.
func MustParse(raw string) Ref {
	r, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return r
}
