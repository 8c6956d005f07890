package strobe

import "fmt"

// DescriptorSet contributes a namespaced sub-graph of related descriptors
// into an enclosing graph. Implementations are thin composition shims:
// they instantiate algorithms through the factory, wire them to the
// shared sample source, and attach pool sinks whose keys live under the
// set's namespace prefix. The prefix is an immutable per-instance value,
// so two differently-configured instances of one set type can coexist in
// a run as long as the caller keeps their prefixes disjoint.
type DescriptorSet interface {
	// Namespace is the pool key prefix for everything this set writes.
	Namespace() string

	// Options is the validated configuration bag the set was built with.
	Options() Params

	// Build adds the set's nodes to g, consuming samples from source and
	// writing descriptors into pool under Namespace()+"."+localKey.
	Build(g *Graph, f *Factory, source *OutPort, pool *Pool) error
}

// PoolKey joins a namespace prefix and a local descriptor key.
func PoolKey(namespace, local string) string {
	return namespace + "." + local
}

// BuildError wraps a descriptor set assembly failure with its namespace
// for diagnosability.
func BuildError(namespace string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("descriptor set %q: %w", namespace, err)
}
