package model

type Employee struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

// EmployeeInput is the body of POST /employees and PUT /employees/{id}.
// Password is optional; when set the server stores its hash so the
// employee can log in.
type EmployeeInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}
