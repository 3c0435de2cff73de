package userimport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/faisallbhr/simple-hris/internal/shared/spreadsheet"
	"github.com/faisallbhr/simple-hris/internal/user"
	"github.com/faisallbhr/simple-hris/internal/userimport"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func row(number int, values map[string]string) spreadsheet.Row {
	return spreadsheet.Row{Number: number, Values: values}
}

func validValues() map[string]string {
	return map[string]string{
		"name":       " Budi Santoso ",
		"email":      " Budi@Mail.com ",
		"password":   "",
		"department": "Finance",
		"manager":    "Siti Rahma",
		"role":       "hr",
	}
}

func TestRowValidator_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves references and roles", func(t *testing.T) {
		repo := newFakeRepository()
		v := userimport.NewRowValidator(repo)

		resolved, errs, err := v.Validate(ctx, row(2, validValues()))

		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Equal(t, "Budi Santoso", resolved.Name)
		assert.Equal(t, "budi@mail.com", resolved.Email)
		assert.Equal(t, userimport.DefaultPassword, resolved.Password)
		require.NotNil(t, resolved.DepartmentID)
		assert.Equal(t, repo.departments["Finance"], *resolved.DepartmentID)
		require.NotNil(t, resolved.ManagerID)
		assert.Equal(t, repo.managers["Siti Rahma"], *resolved.ManagerID)
		assert.Equal(t, []user.Role{repo.role("employee"), repo.role("hr")}, resolved.Roles)
	})

	t.Run("employee role is assigned once", func(t *testing.T) {
		repo := newFakeRepository()
		values := validValues()
		values["role"] = "employee"

		resolved, errs, err := userimport.NewRowValidator(repo).Validate(ctx, row(2, values))

		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Equal(t, []user.Role{repo.role("employee")}, resolved.Roles)
	})

	t.Run("every failed rule is reported", func(t *testing.T) {
		values := map[string]string{"name": "", "email": "not-an-email", "password": "123", "role": "boss"}

		_, errs, err := userimport.NewRowValidator(newFakeRepository()).Validate(ctx, row(5, values))

		require.NoError(t, err)
		var messages []string
		for _, e := range errs {
			assert.Equal(t, 5, e.Row)
			assert.Equal(t, userimport.ErrorTypeValidation, e.Type)
			assert.Equal(t, values, e.Data)
			messages = append(messages, e.Message)
		}
		assert.ElementsMatch(t, []string{
			"The name field is required.",
			"The email field must be a valid email address.",
			"The password field must be at least 6 characters.",
			"The selected role is invalid.",
		}, messages)
	})

	t.Run("email taken by an existing user", func(t *testing.T) {
		repo := newFakeRepository()
		repo.emails["budi@mail.com"] = true

		_, errs, err := userimport.NewRowValidator(repo).Validate(ctx, row(3, validValues()))

		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "The email has already been taken.", errs[0].Message)
	})

	t.Run("unknown department stops the row", func(t *testing.T) {
		values := validValues()
		values["department"] = "Sales"
		values["manager"] = "Nobody"

		_, errs, err := userimport.NewRowValidator(newFakeRepository()).Validate(ctx, row(4, values))

		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, userimport.ErrorTypeReference, errs[0].Type)
		assert.Equal(t, "Department 'Sales' not found", errs[0].Message)
	})

	t.Run("unknown manager", func(t *testing.T) {
		values := validValues()
		values["manager"] = "Nobody"

		_, errs, err := userimport.NewRowValidator(newFakeRepository()).Validate(ctx, row(4, values))

		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, userimport.ErrorTypeReference, errs[0].Type)
		assert.Equal(t, "Manager with name 'Nobody' not found", errs[0].Message)
	})

	t.Run("lookups are cached per validator", func(t *testing.T) {
		repo := newFakeRepository()
		v := userimport.NewRowValidator(repo)

		for i := 0; i < 3; i++ {
			values := validValues()
			values["email"] = uuid.NewString() + "@mail.com"
			_, errs, err := v.Validate(ctx, row(i+2, values))
			require.NoError(t, err)
			require.Empty(t, errs)
		}
		assert.Equal(t, 1, repo.roleLookups)
		assert.Equal(t, 1, repo.deptLookups)
	})

	t.Run("repository failure is not a row error", func(t *testing.T) {
		repo := newFakeRepository()
		repo.listRolesFn = func(ctx context.Context) ([]user.Role, error) {
			return nil, errors.New("connection reset")
		}

		_, errs, err := userimport.NewRowValidator(repo).Validate(ctx, row(2, validValues()))

		assert.Error(t, err)
		assert.Empty(t, errs)
	})
}

func TestRowValidator_Persist(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and links roles", func(t *testing.T) {
		repo := newFakeRepository()
		v := userimport.NewRowValidator(repo)
		r := row(2, validValues())

		resolved, errs, err := v.Validate(ctx, r)
		require.NoError(t, err)
		require.Empty(t, errs)

		created, rowErr := v.Persist(ctx, r, resolved)

		require.Nil(t, rowErr)
		require.Len(t, repo.created, 1)
		assert.Equal(t, "budi@mail.com", created.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(userimport.DefaultPassword)))
		assert.Equal(t, []uuid.UUID{repo.role("employee").ID, repo.role("hr").ID}, repo.createdRole[created.ID])
	})

	t.Run("insert failure becomes a persistence error", func(t *testing.T) {
		repo := newFakeRepository()
		repo.createUserFn = func(ctx context.Context, u *user.User, roleIDs []uuid.UUID) error {
			return errors.New("value too long for type character varying(255)")
		}
		v := userimport.NewRowValidator(repo)
		r := row(7, validValues())

		resolved, _, err := v.Validate(ctx, r)
		require.NoError(t, err)

		created, rowErr := v.Persist(ctx, r, resolved)

		assert.Nil(t, created)
		require.NotNil(t, rowErr)
		assert.Equal(t, 7, rowErr.Row)
		assert.Equal(t, userimport.ErrorTypePersistence, rowErr.Type)
		assert.Equal(t, "Failed to create user: value too long for type character varying(255)", rowErr.Message)
	})
}
