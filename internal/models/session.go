package models

type Role string

const (
	RoleDepartmentHead     Role = "Department Head"
	RoleLogisticsOfficer   Role = "Logistics Officer"
	RoleBursar             Role = "Bursar"
	RoleRector             Role = "Rector"
	RoleProcurementOfficer Role = "Procurement Officer"
	RoleSupplier           Role = "Supplier"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleDepartmentHead, RoleLogisticsOfficer, RoleBursar, RoleRector, RoleProcurementOfficer, RoleSupplier:
		return true
	default:
		return false
	}
}

// Session identifies the acting user of a request. It is passed explicitly to
// every operation that depends on who is acting.
type Session struct {
	Username string
	Role     Role
}

func (s Session) Valid() bool {
	return len(s.Username) > 0 && ValidRole(s.Role)
}

type ApproveType string

const (
	ATApprove ApproveType = "Approved"
	ATReject  ApproveType = "Rejected"
)

func ValidApproveType(t ApproveType) bool {
	switch t {
	case ATApprove, ATReject:
		return true
	default:
		return false
	}
}
