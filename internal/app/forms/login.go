package forms

type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

func (f *LoginForm) Validate() Errors {
	trim(&f.Email)
	return check(f)
}
