package domain

import (
	"fmt"
	"slices"
)

type Role string

const (
	SystemOwner      Role = "SYSTEM_OWNER"
	ViewerEditor     Role = "VIEWER_EDITOR"
	ReviewerApprover Role = "REVIEWER_APPROVER"
	UserAdmin        Role = "USER_ADMIN"
	BudgetTeam       Role = "BUDGET_TEAM"
	ProcurementTeam  Role = "PROCUREMENT_TEAM"
)

func (r Role) String() string {
	return string(r)
}

func AsRole(s string) (Role, error) {
	switch r := Role(s); r {
	case SystemOwner, ViewerEditor, ReviewerApprover, UserAdmin, BudgetTeam, ProcurementTeam:
		return r, nil
	default:
		return "", fmt.Errorf("'%s' is not Role", s)
	}
}

type User struct {
	Id         int
	Email      string
	FullName   string
	DivisionId *int
	Roles      []Role
}

func (u User) HasRole(r Role) bool {
	return slices.Contains(u.Roles, r)
}

// DisplayName is the full name, or the email when the name is unknown.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("user #%d", u.Id)
}

type Division struct {
	Id                       int
	Name                     string
	Abbreviation             string
	DivisionDirectorId       *int
	DeputyDivisionDirectorId *int
}

// Directors are the user ids allowed to approve changes managed by the division.
func (d Division) Directors() []int {
	ids := []int{}
	if d.DivisionDirectorId != nil {
		ids = append(ids, *d.DivisionDirectorId)
	}
	if d.DeputyDivisionDirectorId != nil && !slices.Contains(ids, *d.DeputyDivisionDirectorId) {
		ids = append(ids, *d.DeputyDivisionDirectorId)
	}
	return ids
}

type Portfolio struct {
	Id           int
	Name         string
	Abbreviation string
	DivisionId   int
}
