package domain

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses список терминальных статусов бронирования.
// Бронирование в терминальном статусе больше не меняется.
var TerminalStatuses = []BookingStatus{
	StatusCancelled,
	StatusExpired,
}

// ValidStatuses все допустимые статусы бронирования
var ValidStatuses = []BookingStatus{
	StatusActive,
	StatusCancelled,
	StatusExpired,
}

// ValidRoles все допустимые роли пользователей
var ValidRoles = []Role{
	RoleUser,
	RoleOwner,
	RoleAdmin,
}
