package security

import "github.com/google/uuid"

// Principal is the resolved identity attached to an authenticated
// request. The interface is closed: UserPrincipal and DevicePrincipal
// are the only variants, and authorization code switches on them
// exhaustively.
type Principal interface {
	isPrincipal()
}

// UserPrincipal is a browser session authenticated by an access token.
type UserPrincipal struct {
	UserID uuid.UUID
	Email  string
}

// DevicePrincipal is a physical device authenticated by a claimed
// device token. UserID is the owner of the trackable the device
// belongs to.
type DevicePrincipal struct {
	UserID   uuid.UUID
	DeviceID string
}

func (UserPrincipal) isPrincipal()   {}
func (DevicePrincipal) isPrincipal() {}
