package model

// Principal identifies an authenticated caller of the admin API.
type Principal struct {
	Subject string
	Role    string
}

func (p Principal) IsAdmin() bool {
	return p.Role == "admin"
}

func (p Principal) IsCoordinator() bool {
	return p.Role == "coordinator" || p.Role == "admin"
}

func (p Principal) IsDriver() bool {
	return p.Role == "driver"
}
