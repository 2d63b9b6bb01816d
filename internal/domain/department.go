package domain

// Department groups students and employees; specialities are the programmes it offers
type Department struct {
	ID           string   `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	Code         string   `json:"code" db:"code"`
	Specialities []string `json:"specialities"`
}

type DepartmentRequest struct {
	Name         string   `json:"name" validate:"required,max=120"`
	Code         string   `json:"code" validate:"required,alphanum,max=16"`
	Specialities []string `json:"specialities" validate:"dive,required,max=120"`
}
