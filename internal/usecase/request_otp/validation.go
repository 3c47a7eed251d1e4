package request_otp

import (
	"fmt"
	"regexp"
)

// Телефон в формате E.164: плюс и от 7 до 15 цифр
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}

	if !phonePattern.MatchString(req.Phone) {
		return fmt.Errorf("%w: phone must be in E.164 format", ErrInvalidInput)
	}

	return nil
}
