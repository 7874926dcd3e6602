package directory

import "time"

// Employment types driving the yearly PTO entitlement.
const (
	EmploymentFullTime = "FullTime"
	EmploymentPartTime = "PartTime"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ManagerID      string    `json:"managerId,omitempty"`
	EmploymentType string    `json:"employmentType"`
	HireDate       time.Time `json:"hireDate"`
	PasswordHash   string    `json:"passwordHash,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`

	// Version is the store row token, not part of the document.
	Version int64 `json:"-"`
}

// Public strips credentials for API responses.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
