package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodySize = 8 << 20

type SignupRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Plan     string `json:"plan" validate:"omitempty,oneof=free paid1 paid2"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	ProfilePic string `json:"profilePic" validate:"required"`
}

type SendMessageRequest struct {
	Text  string `json:"text" validate:"required_without=Image,max=2000"`
	Image string `json:"image"`
}

type CheckoutRequest struct {
	Plan string `json:"plan" validate:"required,oneof=premium pro"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "required_without":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fe.Field() + " is invalid"
	}
}

// decodeRequest reads a JSON body into v and validates it.
func (s *GoChatApp) decodeRequest(w http.ResponseWriter, r *http.Request, v any) *ApiError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewBadRequestError()
	}

	if err := s.validate.Struct(v); err != nil {
		return NewValidationError(validationMessage(err))
	}

	return nil
}
