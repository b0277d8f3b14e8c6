package handlers

type SendCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RegisterRequest leaves presence checks to the auth service, which must
// report missing fields before any other validation.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Code       string `json:"code"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	BirthDay   int    `json:"birth_day"`
	BirthMonth int    `json:"birth_month"`
	BirthYear  int    `json:"birth_year"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddToCartRequest struct {
	Ref      string `json:"ref" validate:"required"`
	Color    string `json:"color" validate:"max=50"`
	Price    *int64 `json:"price" validate:"required,gte=0"`
	Quantity *int   `json:"quantity" validate:"required"`
	Image    string `json:"image" validate:"max=500"`
}

type UpdateCartRequest struct {
	ID       uint `json:"id" validate:"required"`
	Quantity *int `json:"quantity" validate:"required"`
}

type RemoveFromCartRequest struct {
	ID uint `json:"id" validate:"required"`
}
