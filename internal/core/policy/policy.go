// Package policy decides whether a principal may perform an account
// operation. Decide is pure: it never touches the store, so it can run
// before any lookup and be tested exhaustively.
package policy

import "github.com/99minutos/accounts-api/internal/core/domain"

// Operation is a kind of account operation subject to authorization.
type Operation int

const (
	OpCreate Operation = iota + 1
	OpList
	OpRead
	OpUpdate
	OpDelete
	OpRestore
	// OpChangeRole covers a role_id supplied on update.
	OpChangeRole
	// OpAssignRole covers a non-default role_id supplied on create.
	OpAssignRole
)

// Operations lists every declared operation.
var Operations = []Operation{
	OpCreate, OpList, OpRead, OpUpdate, OpDelete, OpRestore, OpChangeRole, OpAssignRole,
}

func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpList:
		return "list"
	case OpRead:
		return "read"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpRestore:
		return "restore"
	case OpChangeRole:
		return "change_role"
	case OpAssignRole:
		return "assign_role"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a policy evaluation.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Decide evaluates op for p against the optional targetID.
func Decide(p domain.Principal, op Operation, targetID string) Decision {
	switch op {
	case OpCreate:
		return Allow
	case OpList, OpDelete, OpRestore, OpChangeRole, OpAssignRole:
		return Decision(p.Privileged())
	case OpRead, OpUpdate:
		return Decision(p.Privileged() || isSelf(p, targetID))
	default:
		return Deny
	}
}

func isSelf(p domain.Principal, targetID string) bool {
	return !p.Anonymous() && targetID != "" && p.ID == targetID
}
