package container

// Lifetime controls how instances of a registered service are shared.
type Lifetime int

const (
	// Singleton services are built once and cached on the root container.
	Singleton Lifetime = iota
	// Transient services are built fresh on every resolution.
	Transient
	// Scoped services are built once per Scope and disposed when the
	// scope closes. Resolving a scoped service directly from the root
	// container is an error.
	Scoped
)

// String implements fmt.Stringer.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	default:
		return "unknown"
	}
}
