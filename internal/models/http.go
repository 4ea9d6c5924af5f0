package models

type LoginReq struct {
	LoginOrEmail string `json:"loginOrEmail" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

type AccessTokenRes struct {
	AccessToken string `json:"accessToken"`
}

type RegistrationReq struct {
	Login    string `json:"login" validate:"required,min=3,max=10,login"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Email    string `json:"email" validate:"required,email"`
}

type CodeReq struct {
	Code string `json:"code" validate:"required"`
}

type EmailReq struct {
	Email string `json:"email" validate:"required,email"`
}

type NewPasswordReq struct {
	NewPassword  string `json:"newPassword" validate:"required,min=6,max=20"`
	RecoveryCode string `json:"recoveryCode" validate:"required"`
}

type MeRes struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

type BanUserReq struct {
	IsBanned  *bool  `json:"isBanned" validate:"required"`
	BanReason string `json:"banReason" validate:"required,min=20,max=300"`
}

type BanBlogReq struct {
	IsBanned *bool `json:"isBanned" validate:"required"`
}

type ErrorMessage struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

type ErrorsRes struct {
	ErrorsMessages []ErrorMessage `json:"errorsMessages"`
}

type ChangeRoleReq struct {
	Role Role `json:"role" validate:"required"`
}
