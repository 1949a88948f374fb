package errors

import (
	"errors"
)

// UserError represents an error with both technical and user-friendly messages
type UserError struct {
	Err     error
	UserMsg string
}

func (e *UserError) Error() string {
	return e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Predefined errors
var (
	ErrUnauthorized = &UserError{
		Err:     errors.New("unauthorized user"),
		UserMsg: "Faqat adminlar uchun!",
	}

	ErrInvalidCategory = &UserError{
		Err:     errors.New("unknown content category"),
		UserMsg: "Noma'lum kontent turi!",
	}

	ErrUnknownGroup = &UserError{
		Err:     errors.New("group not registered"),
		UserMsg: "Bunday guruh topilmadi!",
	}

	ErrNotANumber = &UserError{
		Err:     errors.New("input is not a number"),
		UserMsg: "Iltimos, raqam kiriting!",
	}

	ErrDurationTooShort = &UserError{
		Err:     errors.New("mute duration below telegram minimum"),
		UserMsg: "Minimal mute vaqti 30 soniya bo'lishi kerak! (Telegram qoidalari bo'yicha)",
	}

	ErrDurationTooLong = &UserError{
		Err:     errors.New("mute duration above telegram maximum"),
		UserMsg: "Maksimal mute vaqti 366 kun bo'lishi kerak! (Telegram qoidalari bo'yicha)",
	}

	ErrEmptyMessage = &UserError{
		Err:     errors.New("welcome message is empty"),
		UserMsg: "Yangi welcome matnini yuboring (faqat matn):",
	}
)

// Wrap wraps a technical error with a user message
func Wrap(err error, userMsg string) *UserError {
	return &UserError{
		Err:     err,
		UserMsg: userMsg,
	}
}

// GetUserMessage extracts user-friendly message from error
func GetUserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMsg
	}
	// Default message for unexpected errors
	return "Xatolik yuz berdi. Keyinroq qayta urinib ko'ring."
}
