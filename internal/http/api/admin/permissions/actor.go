package permissions

// Actor is the authenticated admin performing a request.
type Actor struct {
	AdminID      uint64
	Username     string
	IsAdmin      bool
	UserType     string
	Capabilities []string
}

// Can reports whether the actor holds capability. Admins hold every capability.
func (a Actor) Can(capability string) bool {
	if a.IsAdmin {
		return true
	}
	for _, held := range a.Capabilities {
		if held == capability {
			return true
		}
	}
	return false
}
