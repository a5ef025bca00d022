package interaction

import "github.com/weiawesome/wes-io-canvas/internal/domain"

// MutationKind tells what a Mutation does.
type MutationKind int

const (
	MutationCreate MutationKind = iota
	MutationUpdate
	MutationDelete
)

func (k MutationKind) String() string {
	switch k {
	case MutationCreate:
		return "create"
	case MutationUpdate:
		return "update"
	case MutationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutation is a change the controller already applied to the store.
// Continuous drag and resize steps have Final unset; a commit (release,
// edit commit, create, delete) has Final set.
type Mutation struct {
	Kind     MutationKind
	Elements []domain.Element
	IDs      []string
	Final    bool
}

// Emitter receives mutations. Emit is called synchronously from event
// handlers and must not block.
type Emitter interface {
	Emit(Mutation)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Mutation)

func (f EmitterFunc) Emit(m Mutation) { f(m) }
