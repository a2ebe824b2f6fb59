package models

// Instrument roles a part can be generated for
const (
	RoleMelody = "melody"
	RoleBass   = "bass"
	RoleVocal  = "vocal"
	RolePiano  = "piano"
	RoleGuitar = "guitar"
	RoleDrums  = "drums"
)

// Default velocities used when an event carries none
const (
	DefaultVelocity      = 64
	DefaultVocalVelocity = 70
)

// GetDefaultVelocityForRole returns the base velocity for events without one
func GetDefaultVelocityForRole(role string) int {
	switch role {
	case RoleVocal:
		return DefaultVocalVelocity
	default:
		return DefaultVelocity
	}
}

// IsGeneratedRole reports whether the composer can generate a part for the role
func IsGeneratedRole(role string) bool {
	return role == RoleMelody || role == RoleBass
}
