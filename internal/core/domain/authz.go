package domain

// Operation names a pickup action an actor may attempt.
type Operation string

const (
	OpCreate  Operation = "create"
	OpClaim   Operation = "claim"
	OpAdvance Operation = "advance"
	OpCancel  Operation = "cancel"
	OpView    Operation = "view"
	OpListAll Operation = "list_all"
)

// CanPerform is the single authorization predicate for pickup operations.
// It centralises the role/ownership rules so no caller re-derives them.
// pickup may be nil for operations that do not target an existing record.
func CanPerform(role, actorID string, op Operation, pickup *Pickup) bool {
	if role == RoleAdmin {
		return true
	}

	switch op {
	case OpCreate:
		return role == RoleCustomer
	case OpClaim:
		return role == RoleDriver
	case OpAdvance:
		// Only the assigned driver may progress a pickup.
		return role == RoleDriver && pickup != nil && pickup.DriverID == actorID
	case OpCancel:
		return role == RoleCustomer && pickup != nil && pickup.CustomerID == actorID
	case OpView:
		if pickup == nil {
			return false
		}
		switch role {
		case RoleCustomer:
			return pickup.CustomerID == actorID
		case RoleDriver:
			// Drivers see their own pickups plus the unclaimed pool.
			return pickup.DriverID == actorID || (pickup.DriverID == "" && pickup.Status == StatusScheduled)
		}
		return false
	case OpListAll:
		return false
	}
	return false
}
