package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,max=255"`
	Phone    string `json:"phone" binding:"required,phone"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Age      int    `json:"age" binding:"required,gte=12,lte=120"`
	Gender   string `json:"gender" binding:"required,max=32"`
}

// LoginRequest represents a login request. Fields are checked by the
// service so that malformed attempts are still audited.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginRequest is accepted as JSON or as a form post.
type AdminLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// GoogleLoginRequest carries an ID token obtained by a mobile client.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// EmailRequest is used by forgot-password and resend-code.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// UpdateProfileRequest changes only the fields that are present.
type UpdateProfileRequest struct {
	FullName          *string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Phone             *string `json:"phone" binding:"omitempty,phone"`
	Age               *int    `json:"age" binding:"omitempty,gte=12,lte=120"`
	Gender            *string `json:"gender" binding:"omitempty,max=32"`
	ProfilePictureURL *string `json:"profile_picture_url" binding:"omitempty,url,max=2048"`
}

// DetectionRequest records one posture classification. UserID is only
// honoured for API-key callers.
type DetectionRequest struct {
	UserID  string   `json:"user_id" binding:"omitempty,uuid"`
	Posture string   `json:"posture" binding:"required,max=64"`
	Angle   *float64 `json:"angle" binding:"required"`
}
