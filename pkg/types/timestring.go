package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// timeLayout формат времени в рамках одного дня
const timeLayout = "15:04"

// TimeString время в рамках одного дня в формате "HH:MM" (например, "10:00").
// Используется для start_time/end_time слотов: дата хранится отдельно,
// а сравнение времени сводится к лексикографическому сравнению строк.
type TimeString string

// NewTimeString создает TimeString из time.Time (отбрасывая дату и секунды)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// String возвращает строковое представление времени
func (t TimeString) String() string {
	return string(t)
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет, что значение соответствует формату "HH:MM".
// Требуются ведущие нули: без них лексикографическое сравнение некорректно.
func (t TimeString) Validate() error {
	if len(t) != len(timeLayout) {
		return fmt.Errorf("invalid time %q, expected HH:MM", string(t))
	}
	if _, err := time.Parse(timeLayout, string(t)); err != nil {
		return fmt.Errorf("invalid time %q, expected HH:MM: %v", string(t), err)
	}
	return nil
}

// IsBefore возвращает true, если t раньше other.
// Для валидных значений "HH:MM" лексикографическое сравнение корректно.
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// AddMinutes возвращает время, сдвинутое на указанное количество минут
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return "", fmt.Errorf("invalid time %q: %v", string(t), err)
	}
	return TimeString(parsed.Add(time.Duration(minutes) * time.Minute).Format(timeLayout)), nil
}

// On совмещает время с календарной датой и возвращает полный time.Time
// в локации переданной даты
func (t TimeString) On(date time.Time) (time.Time, error) {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %v", string(t), err)
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		date.Location(),
	), nil
}

// Scan реализует sql.Scanner.
// Поддерживает time.Time (колонки TIME), string и []byte ("HH:MM" или "HH:MM:SS").
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case string:
		*t = truncateSeconds(v)
		return nil
	case []byte:
		*t = truncateSeconds(string(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeString", src)
	}
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// MarshalJSON реализует json.Marshaler
func (t TimeString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// UnmarshalJSON реализует json.Unmarshaler
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return err
	}
	*t = ts
	return nil
}

// truncateSeconds отбрасывает секунды из "HH:MM:SS"
func truncateSeconds(s string) TimeString {
	if len(s) > len(timeLayout) {
		return TimeString(s[:len(timeLayout)])
	}
	return TimeString(s)
}
