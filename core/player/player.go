package player

import "strings"

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner, RoleAdminPrincipal}
	TeacherRoles = []string{RoleTeacher}
	StudentRoles = []string{RoleStudent}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner:     30,
		RoleAdminPrincipal: 29,
		RoleAdmin:          21,

		// Teachers: 20 - 11
		RoleTeacher: 11,

		// Students: 10 - 1
		RoleStudent: 1,
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 5)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	all = append(all, StudentRoles...)
	return all
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// MaxIDLength bounds player ids, which are stored with every attempt.
const MaxIDLength = 64

// Player is whoever is authenticated on the portal.
// Accounts live in the portal's identity service; the game only sees what the JWT carries.
type Player struct {
	ID       string   `json:"id" validate:"required,max=64"`
	Username string   `json:"username" validate:"required,max=150"`
	Roles    []string `json:"roles"`
}

func (p Player) RoleStartsWith(prefix string) bool {
	for _, role := range p.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (p Player) IsAdmin() bool {
	return p.RoleStartsWith(RoleAdmin)
}

func (p Player) IsTeacher() bool {
	return p.RoleStartsWith(RoleTeacher)
}

func (p Player) IsStudent() bool {
	return p.RoleStartsWith(RoleStudent)
}

// CanReview tells whether the player may look at other players' attempts.
func (p Player) CanReview() bool {
	return MaxRolePriority(p.Roles) >= RolePriority(RoleTeacher)
}
