package model

// Identity is what POST /login returns for an accepted credential.
type Identity struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	EmployeeID *int   `json:"employeeId,omitempty"`
}

// Credentials is the body of POST /login. ExpectedRole names the login form
// the user submitted from; a mismatching account is refused.
type Credentials struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ExpectedRole string `json:"expectedRole"`
}
