package domain

// Access permission flags an employee account can hold
const (
	PermissionStudents    = "students"
	PermissionFees        = "fees"
	PermissionDepartments = "departments"
	PermissionEmployees   = "employees"
	PermissionReports     = "reports"
)

// Permissions lists every known access flag
var Permissions = []string{
	PermissionStudents,
	PermissionFees,
	PermissionDepartments,
	PermissionEmployees,
	PermissionReports,
}

type Employee struct {
	ID                string   `json:"id" db:"id"`
	Name              string   `json:"name" db:"name"`
	Email             string   `json:"email" db:"email"`
	Phone             string   `json:"phone" db:"phone"`
	Designation       string   `json:"designation" db:"designation"`
	Departments       []string `json:"departments"`
	AccessPermissions []string `json:"accessPermissions"`
}

type CreateEmployeeRequest struct {
	Name              string   `json:"name" validate:"required,max=120"`
	Email             string   `json:"email" validate:"required,email"`
	Phone             string   `json:"phone" validate:"omitempty,e164"`
	Designation       string   `json:"designation" validate:"max=80"`
	Departments       []string `json:"departments" validate:"dive,required"`
	AccessPermissions []string `json:"accessPermissions" validate:"unique,dive,permission"`
}
