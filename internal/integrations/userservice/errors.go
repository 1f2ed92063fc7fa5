package userservice

import "errors"

var (
	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("userservice: user not found")

	// ErrInvalidResponse возвращается при некорректном ответе UserService
	ErrInvalidResponse = errors.New("userservice: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("userservice: internal error")
)
