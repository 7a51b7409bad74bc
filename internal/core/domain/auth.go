package domain

// AuthStep is the next step a caller must take in the login flow.
type AuthStep string

const (
	StepVerifyCode     AuthStep = "verify_code"
	StepVerifyPassword AuthStep = "verify_password"
	StepCompleted      AuthStep = "completed"
)

// AuthResult is returned by each login step. SessionString is the token the
// caller must present from now on.
type AuthResult struct {
	Message       string   `json:"message"`
	NextStep      AuthStep `json:"next_step"`
	SessionString string   `json:"session_string,omitempty"`
}

// GroupInfo describes a joined group or channel.
type GroupInfo struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Username    string `json:"username,omitempty"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}
