package reserve_slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("reserve_slot: slot not found")

	// ErrSlotUnavailable возвращается, когда слот уже занят другим бронированием
	ErrSlotUnavailable = errors.New("reserve_slot: slot is not available")

	// ErrSlotInPast возвращается при попытке забронировать уже начавшийся слот
	ErrSlotInPast = errors.New("reserve_slot: slot is in the past")

	// ErrCourtUnavailable возвращается, когда корт закрыт для бронирования
	ErrCourtUnavailable = errors.New("reserve_slot: court is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_slot: internal error")
)
