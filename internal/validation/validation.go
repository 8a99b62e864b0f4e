// Package validation проверяет поля форм до отправки на сервер.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/iudanet/medportal/pkg/api"
)

// EmailPattern — упрощенная проверка email: local@domain.tld без пробелов
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// OTPPattern — одноразовый код из 6 цифр
var OTPPattern = regexp.MustCompile(`^[0-9]{6}$`)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen максимальная длина пароля
	MaxPasswordLen = 128
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
	// MaxNameLen максимальная длина имени и фамилии
	MaxNameLen = 64
)

// Errors — ошибки валидации формы по полям
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add сохраняет первую ошибку поля
func (e Errors) add(field string, err error) {
	if err == nil {
		return
	}
	if _, ok := e[field]; !ok {
		e[field] = err.Error()
	}
}

// orNil возвращает nil, если ошибок нет
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}
	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email is not valid")
	}
	return nil
}

// ValidatePassword проверяет требования к паролю:
// длина 8-128 символов, хотя бы одна буква и одна цифра
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}

	return nil
}

// ValidateOTP проверяет одноразовый код
func ValidateOTP(otp string) error {
	if otp == "" {
		return fmt.Errorf("code cannot be empty")
	}
	if !OTPPattern.MatchString(otp) {
		return fmt.Errorf("code must be 6 digits")
	}
	return nil
}

// ValidateName проверяет имя или фамилию
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("cannot be empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("must not exceed %d characters", MaxNameLen)
	}
	return nil
}

// ValidateLogin проверяет форму логина
func ValidateLogin(email, password string) error {
	errs := Errors{}
	errs.add("email", ValidateEmail(email))
	if password == "" {
		errs.add("password", fmt.Errorf("password cannot be empty"))
	}
	return errs.orNil()
}

// ValidateRegistration проверяет форму регистрации.
// Согласия с условиями и политикой конфиденциальности обязательны.
func ValidateRegistration(req api.RegisterRequest, confirmPassword string) error {
	errs := Errors{}

	errs.add("first_name", ValidateName(req.FirstName))
	errs.add("last_name", ValidateName(req.LastName))
	errs.add("email", ValidateEmail(req.Email))
	errs.add("password", ValidatePassword(req.Password))
	if req.Password != confirmPassword {
		errs.add("confirm_password", fmt.Errorf("passwords do not match"))
	}
	if strings.TrimSpace(req.Location) == "" {
		errs.add("location", fmt.Errorf("location cannot be empty"))
	}
	if !req.Role.Valid() {
		errs.add("role", fmt.Errorf("unknown role %q", req.Role))
	}
	if !req.Consents.Terms {
		errs.add("consents.terms", fmt.Errorf("terms of service must be accepted"))
	}
	if !req.Consents.Privacy {
		errs.add("consents.privacy", fmt.Errorf("privacy policy must be accepted"))
	}

	return errs.orNil()
}
