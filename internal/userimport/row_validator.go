package userimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/spreadsheet"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	ErrorTypeValidation  = "validation"
	ErrorTypeReference   = "reference"
	ErrorTypePersistence = "persistence"

	DefaultPassword = "password"
	BaseRole        = "employee"
)

// RowError describes why one spreadsheet row was not imported. Row is the
// line number in the file, the heading being line 1.
type RowError struct {
	Row     int               `json:"row"`
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

type importRow struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"omitempty,min=6"`
	Department string `json:"department" validate:"omitempty,max=255"`
	Manager    string `json:"manager" validate:"omitempty,max=255"`
	Role       string `json:"role" validate:"required"`
}

// ResolvedRow is a row that passed validation with its references looked up.
type ResolvedRow struct {
	Name         string
	Email        string
	Password     string
	DepartmentID *uuid.UUID
	ManagerID    *uuid.UUID
	Roles        []user.Role
}

// RowValidator checks rows against one repository, normally bound to the
// import transaction. Roles and departments are looked up once per validator.
type RowValidator struct {
	repo     Repository
	validate *validator.Validate
	hashCost int

	roles       map[string]user.Role
	departments map[string]*uuid.UUID
}

func NewRowValidator(repo Repository) *RowValidator {
	v := validator.New()
	apperror.RegisterJSONTagNames(v)
	return &RowValidator{
		repo:        repo,
		validate:    v,
		hashCost:    bcrypt.DefaultCost,
		departments: map[string]*uuid.UUID{},
	}
}

func newRow(row spreadsheet.Row) importRow {
	return importRow{
		Name:       strings.TrimSpace(row.Get("name")),
		Email:      strings.TrimSpace(row.Get("email")),
		Password:   row.Get("password"),
		Department: strings.TrimSpace(row.Get("department")),
		Manager:    strings.TrimSpace(row.Get("manager")),
		Role:       strings.TrimSpace(row.Get("role")),
	}
}

func rowError(row spreadsheet.Row, kind, message string) RowError {
	return RowError{Row: row.Number, Type: kind, Message: message, Data: row.Values}
}

// Validate reports every failed rule of the row. Reference lookups only run
// once the row is valid and stop at the first missing reference.
func (v *RowValidator) Validate(ctx context.Context, row spreadsheet.Row) (ResolvedRow, []RowError, error) {
	in := newRow(row)

	var errs []RowError
	failed := map[string]bool{}
	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ResolvedRow{}, nil, err
		}
		for _, fe := range fieldErrs {
			failed[fe.Field()] = true
			errs = append(errs, rowError(row, ErrorTypeValidation, apperror.FieldMessage(fe)))
		}
	}

	if !failed["email"] {
		taken, err := v.repo.EmailExists(ctx, in.Email)
		if err != nil {
			return ResolvedRow{}, nil, err
		}
		if taken {
			errs = append(errs, rowError(row, ErrorTypeValidation, "The email has already been taken."))
		}
	}

	var declared user.Role
	if !failed["role"] {
		role, ok, err := v.role(ctx, in.Role)
		if err != nil {
			return ResolvedRow{}, nil, err
		}
		if !ok {
			errs = append(errs, rowError(row, ErrorTypeValidation, "The selected role is invalid."))
		}
		declared = role
	}

	if len(errs) > 0 {
		return ResolvedRow{}, errs, nil
	}

	resolved := ResolvedRow{
		Name:     in.Name,
		Email:    strings.ToLower(in.Email),
		Password: in.Password,
	}
	if resolved.Password == "" {
		resolved.Password = DefaultPassword
	}

	if in.Department != "" {
		id, err := v.department(ctx, in.Department)
		if err != nil {
			return ResolvedRow{}, nil, err
		}
		if id == nil {
			return ResolvedRow{}, []RowError{rowError(row, ErrorTypeReference,
				fmt.Sprintf("Department '%s' not found", row.Get("department")))}, nil
		}
		resolved.DepartmentID = id
	}

	if in.Manager != "" {
		id, err := v.repo.FindManagerIDByName(ctx, in.Manager)
		if err != nil {
			return ResolvedRow{}, nil, err
		}
		if id == nil {
			return ResolvedRow{}, []RowError{rowError(row, ErrorTypeReference,
				fmt.Sprintf("Manager with name '%s' not found", row.Get("manager")))}, nil
		}
		resolved.ManagerID = id
	}

	base, ok, err := v.role(ctx, BaseRole)
	if err != nil {
		return ResolvedRow{}, nil, err
	}
	if ok {
		resolved.Roles = append(resolved.Roles, base)
	}
	if declared.Name != BaseRole {
		resolved.Roles = append(resolved.Roles, declared)
	}

	return resolved, nil, nil
}

// Persist creates the user. A failure is returned as a row error so the
// caller can keep scanning.
func (v *RowValidator) Persist(ctx context.Context, row spreadsheet.Row, resolved ResolvedRow) (*user.User, *RowError) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(resolved.Password), v.hashCost)
	if err != nil {
		e := rowError(row, ErrorTypePersistence, "Failed to create user: "+err.Error())
		return nil, &e
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         resolved.Name,
		Email:        resolved.Email,
		Password:     string(hashed),
		DepartmentID: resolved.DepartmentID,
		ManagerID:    resolved.ManagerID,
	}
	roleIDs := make([]uuid.UUID, len(resolved.Roles))
	for i, r := range resolved.Roles {
		roleIDs[i] = r.ID
	}

	if err := v.repo.CreateUser(ctx, u, roleIDs); err != nil {
		e := rowError(row, ErrorTypePersistence, "Failed to create user: "+err.Error())
		return nil, &e
	}
	u.Roles = resolved.Roles
	return u, nil
}

func (v *RowValidator) role(ctx context.Context, name string) (user.Role, bool, error) {
	if v.roles == nil {
		roles, err := v.repo.ListRoles(ctx)
		if err != nil {
			return user.Role{}, false, err
		}
		v.roles = make(map[string]user.Role, len(roles))
		for _, r := range roles {
			v.roles[r.Name] = r
		}
	}
	r, ok := v.roles[name]
	return r, ok, nil
}

func (v *RowValidator) department(ctx context.Context, name string) (*uuid.UUID, error) {
	if id, ok := v.departments[name]; ok {
		return id, nil
	}
	id, err := v.repo.FindDepartmentIDByName(ctx, name)
	if err != nil {
		return nil, err
	}
	v.departments[name] = id
	return id, nil
}
