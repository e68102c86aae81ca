package dto

type IssueDeviceTokenResponse struct {
	DeviceToken string `json:"device_token"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
}

// QuickCreateResponse bundles a freshly minted device identity with a
// QR payload for provisioning. The token is shown exactly once.
type QuickCreateResponse struct {
	DeviceID    string `json:"device_id"`
	DeviceToken string `json:"device_token"`
	QRDataURL   string `json:"qr_data_url"`
}
