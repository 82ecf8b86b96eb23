package model

// Role indicates how the client authenticated against the hub.
type Role uint8

const (
	// RoleUser indicates login/password authentication.
	RoleUser Role = iota

	// RoleAccessKey indicates access-key authentication.
	RoleAccessKey

	// RoleDevice indicates device identity authentication. A device
	// principal has exactly one implicit target: itself.
	RoleDevice
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAccessKey:
		return "ACCESS_KEY"
	case RoleDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// Principal identifies the authenticated caller.
type Principal struct {
	// Role is the authentication role.
	Role Role

	// Login is the user login (RoleUser only).
	Login string

	// AccessKey is the access key (RoleAccessKey only).
	AccessKey string

	// DeviceID is the device identifier (RoleDevice only).
	DeviceID string
}

// UserPrincipal returns a principal authenticated as a user.
func UserPrincipal(login string) Principal {
	return Principal{Role: RoleUser, Login: login}
}

// KeyPrincipal returns a principal authenticated with an access key.
func KeyPrincipal(key string) Principal {
	return Principal{Role: RoleAccessKey, AccessKey: key}
}

// DevicePrincipal returns a principal authenticated as a device.
func DevicePrincipal(deviceID string) Principal {
	return Principal{Role: RoleDevice, DeviceID: deviceID}
}

// IsClient reports whether the principal is a user or access-key caller.
func (p Principal) IsClient() bool {
	return p.Role == RoleUser || p.Role == RoleAccessKey
}

// IsDevice reports whether the principal is a device identity.
func (p Principal) IsDevice() bool {
	return p.Role == RoleDevice
}
