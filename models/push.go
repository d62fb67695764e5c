package models

// PushPermission mirrors the browser notification permission
type PushPermission string

const (
	PushPermissionDefault     PushPermission = "default"
	PushPermissionGranted     PushPermission = "granted"
	PushPermissionDenied      PushPermission = "denied"
	PushPermissionUnsupported PushPermission = "unsupported"
)

// ParsePushPermission maps a raw permission, treating unknown values as default
func ParsePushPermission(raw string) PushPermission {
	switch p := PushPermission(raw); p {
	case PushPermissionGranted, PushPermissionDenied, PushPermissionUnsupported:
		return p
	}
	return PushPermissionDefault
}

// PushSubscriptionState is derived from the permission and the local subscribed flag
type PushSubscriptionState struct {
	Permission PushPermission `json:"permission"`
	Subscribed bool           `json:"isSubscribed"`
	Supported  bool           `json:"isSupported"`
}

// PushPermissionRequest carries the permission the browser prompt settled to
type PushPermissionRequest struct {
	Permission string `json:"permission"`
}

// PushPermissionResponse is returned after a permission request
type PushPermissionResponse struct {
	Granted bool                  `json:"granted"`
	State   PushSubscriptionState `json:"state"`
}
