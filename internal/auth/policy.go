package auth

import (
	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleTrainer      Role = "TRAINER"
	RoleClient       Role = "CLIENT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReceptionist, RoleTrainer, RoleClient:
		return true
	}
	return false
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleReceptionist || a.Role == RoleTrainer
}

type Operation string

const (
	OpUserCreate  Operation = "user:create"
	OpUserRead    Operation = "user:read"
	OpUserReadOwn Operation = "user:read_own"
	OpUserUpdate  Operation = "user:update"
	OpUserDelete  Operation = "user:delete"
	OpPlanWrite   Operation = "plan:write"
	OpPlanRead    Operation = "plan:read"
	OpPlanDelete  Operation = "plan:delete"

	OpMembershipWrite    Operation = "membership:write"
	OpMembershipRead     Operation = "membership:read"
	OpMembershipReadOwn  Operation = "membership:read_own"
	OpMembershipValidate Operation = "membership:validate"
	OpMembershipDelete   Operation = "membership:delete"

	OpClassWrite      Operation = "class:write"
	OpClassRead       Operation = "class:read"
	OpClassDelete     Operation = "class:delete"
	OpClassAttendance Operation = "class:attendance"
	OpBookingOwn      Operation = "booking:own"
	OpBookingManage   Operation = "booking:manage"

	OpProductWrite  Operation = "product:write"
	OpProductRead   Operation = "product:read"
	OpProductDelete Operation = "product:delete"
	OpSaleCreate    Operation = "sale:create"
	OpSaleRead      Operation = "sale:read"

	OpPaymentWrite   Operation = "payment:write"
	OpPaymentRead    Operation = "payment:read"
	OpPaymentReadOwn Operation = "payment:read_own"
)

var (
	allRoles   = []Role{RoleAdmin, RoleReceptionist, RoleTrainer, RoleClient}
	staffRoles = []Role{RoleAdmin, RoleReceptionist, RoleTrainer}
	frontDesk  = []Role{RoleAdmin, RoleReceptionist}
	adminOnly  = []Role{RoleAdmin}
)

// Policy maps every guarded operation to the roles allowed to perform it.
var Policy = map[Operation][]Role{
	OpUserCreate:  frontDesk,
	OpUserRead:    staffRoles,
	OpUserReadOwn: allRoles,
	OpUserUpdate:  frontDesk,
	OpUserDelete:  adminOnly,

	OpPlanWrite:  frontDesk,
	OpPlanRead:   allRoles,
	OpPlanDelete: adminOnly,

	OpMembershipWrite:    frontDesk,
	OpMembershipRead:     staffRoles,
	OpMembershipReadOwn:  allRoles,
	OpMembershipValidate: staffRoles,
	OpMembershipDelete:   adminOnly,

	OpClassWrite:      staffRoles,
	OpClassRead:       allRoles,
	OpClassDelete:     adminOnly,
	OpClassAttendance: staffRoles,
	OpBookingOwn:      allRoles,
	OpBookingManage:   frontDesk,

	OpProductWrite:  frontDesk,
	OpProductRead:   staffRoles,
	OpProductDelete: adminOnly,
	OpSaleCreate:    frontDesk,
	OpSaleRead:      frontDesk,

	OpPaymentWrite:   frontDesk,
	OpPaymentRead:    frontDesk,
	OpPaymentReadOwn: allRoles,
}

// ownOps names the operation that covers a caller acting on their own
// records in place of the staff-wide one.
var ownOps = map[Operation]Operation{
	OpUserRead:       OpUserReadOwn,
	OpMembershipRead: OpMembershipReadOwn,
	OpBookingManage:  OpBookingOwn,
	OpPaymentRead:    OpPaymentReadOwn,
}

var ErrForbidden = apperr.Forbidden("insufficient permissions")

func Allowed(role Role, op Operation) bool {
	for _, r := range Policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

func Authorize(actor Actor, op Operation) error {
	if !Allowed(actor.Role, op) {
		logger.Warn("permission denied",
			"user_id", actor.UserID.String(),
			"role", string(actor.Role),
			"operation", string(op),
		)
		return ErrForbidden
	}
	return nil
}

// AuthorizeSelf allows callers holding op, or callers acting on their own
// user id when they hold the matching own-records operation.
func AuthorizeSelf(actor Actor, op Operation, userID uuid.UUID) error {
	if own, ok := ownOps[op]; ok && actor.UserID == userID && Allowed(actor.Role, own) {
		return nil
	}
	return Authorize(actor, op)
}
