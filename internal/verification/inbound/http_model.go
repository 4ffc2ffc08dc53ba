package inbound

type SignupRequest struct {
	AccountID   string `json:"account_id"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Region      string `json:"region"`
	Subregion   string `json:"subregion"`
}

type SignupResponse struct {
	SessionToken string `json:"session_token"`
	Phone        string `json:"phone"`
	ProviderID   string `json:"provider_id"`
}

func (SignupResponse) Message() string {
	return "A verification code has been sent to your registered phone number."
}

type AccountPayload struct {
	AccountID   string `json:"account_id"`
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	Region      string `json:"region"`
	Subregion   string `json:"subregion"`
	Verified    bool   `json:"verified"`
}

type SignupConfirmRequest struct {
	SessionToken string `json:"session_token"`
	Code         string `json:"code"`
}

type SignupConfirmResponse struct {
	Account AccountPayload `json:"account"`
}

func (SignupConfirmResponse) Message() string {
	return "Your account has been verified."
}

type OTPResendRequest struct {
	SessionToken string `json:"session_token"`
}

type OTPResendResponse struct{}

func (OTPResendResponse) Message() string {
	return "A new verification code has been sent."
}

type LoginOTPRequest struct {
	AccountID string `json:"account_id"`
}

type LoginOTPResponse struct {
	SessionToken string `json:"session_token"`
	Phone        string `json:"phone"`
}

func (LoginOTPResponse) Message() string {
	return "A verification code has been sent to your registered phone number."
}

type LoginOTPConfirmRequest struct {
	SessionToken string `json:"session_token"`
	Code         string `json:"code"`
}

type LoginOTPConfirmResponse struct {
	Account AccountPayload `json:"account"`
}

func (LoginOTPConfirmResponse) Message() string {
	return "Login verified."
}

type LoginPasswordRequest struct {
	AccountID string `json:"account_id"`
	Password  string `json:"password"`
}

type LoginPasswordResponse struct {
	AccessToken  string         `json:"access_token"`
	IDToken      string         `json:"id_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	ExpiresIn    int32          `json:"expires_in,omitempty"`
	Account      AccountPayload `json:"account"`
}

func (LoginPasswordResponse) Message() string {
	return "Login successful."
}
