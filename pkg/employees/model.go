package employees

// Employee is a row in peopledata. NameID is the key assets reference in
// assigned_to.
type Employee struct {
	NameID     string `json:"employeeId"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

// EmployeeDetails is the payload clients see, both as map values in the list
// response and as the single-employee body.
type EmployeeDetails struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

func (e Employee) details() EmployeeDetails {
	return EmployeeDetails{Name: e.Name, Department: e.Department, Email: e.Email}
}
