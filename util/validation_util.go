// util/validation_util.go

package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

// Struct runs tag validation and reports every failing field under base.
func (v *ValidationUtil) Struct(base error, s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return grant_errors.Validation(base, err.Error())
	}
	details := make([]string, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return grant_errors.Validation(base, strings.Join(details, "; "))
}

func (v *ValidationUtil) ValidateSubmission(in model.SubmitRequestInput) error {
	return v.Struct(grant_errors.ErrInvalidRequestData, in)
}

func (v *ValidationUtil) ValidateAdminAssignment(email string, in model.AssignAdminInput) error {
	if err := v.validate.Var(email, "required,email"); err != nil {
		return grant_errors.Validation(grant_errors.ErrInvalidAdminData, "email must be a valid address")
	}
	if err := v.Struct(grant_errors.ErrInvalidAdminData, in); err != nil {
		return err
	}
	if in.Role == model.RoleProjectAdmin && len(in.AssignedProjects) == 0 {
		return grant_errors.Validation(grant_errors.ErrInvalidAdminData, "project-admin needs at least one assigned project")
	}
	return nil
}
