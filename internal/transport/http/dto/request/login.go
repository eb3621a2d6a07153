package request

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FirstName    string `json:"fname" validate:"required,max=100"`
	LastName     string `json:"lname" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=64"`
	PasswordConf string `json:"password_conf" validate:"required"`
}
