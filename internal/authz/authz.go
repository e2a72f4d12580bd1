package authz

import (
	"net/http"

	"github.com/google/uuid"
)

// Role is the closed set of admin roles. Anything outside this set is
// treated as unrecognized and denied.
type Role string

const (
	RolePlatformAdmin  Role = "PLATFORM_ADMIN"
	RoleSupportStaff   Role = "SUPPORT_STAFF"
	RoleWarehouseAdmin Role = "WAREHOUSE_ADMIN"
)

// Recognized reports whether the role is one of the three admin roles.
func (r Role) Recognized() bool {
	switch r {
	case RolePlatformAdmin, RoleSupportStaff, RoleWarehouseAdmin:
		return true
	}
	return false
}

// ParseRole maps a stored or client-supplied string onto a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Recognized()
}

// Action is the kind of operation the caller wants to perform.
type Action string

const (
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceClass is the type of entity being acted on.
type ResourceClass string

const (
	ClassUser         ResourceClass = "user"
	ClassWarehouse    ResourceClass = "warehouse"
	ClassAnnouncement ResourceClass = "announcement"
)

// capabilities is the closed action set per resource class. Unknown
// (class, action) pairs are rejected as invalid requests before any rule
// is consulted.
var capabilities = map[ResourceClass]map[Action]struct{}{
	ClassUser: {
		ActionRead: {}, ActionList: {}, ActionCreate: {}, ActionUpdate: {}, ActionDelete: {},
	},
	ClassWarehouse: {
		ActionRead: {}, ActionList: {}, ActionCreate: {}, ActionUpdate: {}, ActionDelete: {},
	},
	ClassAnnouncement: {
		ActionRead: {}, ActionList: {}, ActionCreate: {}, ActionUpdate: {}, ActionDelete: {},
	},
}

// Caller is the resolved identity attempting an action. The engine never
// sees raw credentials, only the identity the Authenticate middleware
// extracted from a valid token.
type Caller struct {
	ID            uuid.UUID
	Role          Role
	Authenticated bool
}

// Ownership carries the owner reference of an existing resource instance.
// The zero value means no ownership context was supplied, which is only
// valid for create/list/read. Unowned() marks a resource whose owning user
// was deleted.
type Ownership struct {
	known bool
	owner *uuid.UUID
}

// OwnedBy returns the ownership context for a resource owned by userID.
func OwnedBy(userID uuid.UUID) Ownership {
	return Ownership{known: true, owner: &userID}
}

// Unowned returns the ownership context for an ownerless resource.
func Unowned() Ownership {
	return Ownership{known: true}
}

// OwnerRef builds the ownership context from a nullable owner column.
func OwnerRef(owner *uuid.UUID) Ownership {
	if owner == nil {
		return Unowned()
	}
	return OwnedBy(*owner)
}

// Reason classifies a Decision for the caller and for the HTTP error body.
type Reason string

const (
	ReasonAllowed          Reason = "allowed"
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonNotOwner         Reason = "not_owner"
	ReasonInvalidRequest   Reason = "invalid_request"
)

// HTTPStatus maps a deny reason onto the status code the API returns.
func (r Reason) HTTPStatus() int {
	switch r {
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonInsufficientRole, ReasonNotOwner:
		return http.StatusForbidden
	case ReasonInvalidRequest:
		return http.StatusBadRequest
	}
	return http.StatusForbidden
}

// Decision is the engine's verdict.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Denied wraps a deny Decision as an error so services can short-circuit
// before touching storage and handlers can map it back onto a status code.
type Denied struct {
	Decision Decision
}

func (e *Denied) Error() string {
	return "authorization denied: " + string(e.Decision.Reason)
}

// Evaluate decides whether caller may perform action on a resource of the
// given class. For update/delete on an existing instance the ownership
// context is required; create/list/read pass the zero Ownership.
//
// Pure function: no I/O, deterministic for a given input. Rules in
// precedence order:
//
//  1. Unauthenticated callers are denied outright.
//  2. The user resource class is platform-admin only. Self lookup is a
//     separate endpoint that bypasses the engine entirely.
//  3. Warehouses and announcements are readable and creatable by every
//     recognized admin role; mutating an instance requires platform admin
//     or ownership. Ownerless instances are platform-admin only.
func Evaluate(caller Caller, action Action, class ResourceClass, owner Ownership) Decision {
	if !caller.Authenticated {
		return deny(ReasonUnauthenticated)
	}
	actions, ok := capabilities[class]
	if !ok {
		return deny(ReasonInvalidRequest)
	}
	if _, ok := actions[action]; !ok {
		return deny(ReasonInvalidRequest)
	}
	if !caller.Role.Recognized() {
		return deny(ReasonInsufficientRole)
	}

	if class == ClassUser {
		if caller.Role == RolePlatformAdmin {
			return allow()
		}
		return deny(ReasonInsufficientRole)
	}

	switch action {
	case ActionRead, ActionList, ActionCreate:
		return allow()
	case ActionUpdate, ActionDelete:
		if !owner.known {
			return deny(ReasonInvalidRequest)
		}
		if caller.Role == RolePlatformAdmin {
			return allow()
		}
		if owner.owner != nil && *owner.owner == caller.ID {
			return allow()
		}
		return deny(ReasonNotOwner)
	}
	return deny(ReasonInvalidRequest)
}
