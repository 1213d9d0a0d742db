package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	timeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
	minutesPerDay     = 24 * 60
)

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("time string overflows day boundary")
)

// TimeString время суток в формате HH:MM (настенные часы, без даты и часового пояса)
type TimeString string

// NewTimeString создает TimeString из времени (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// NewTimeStringFromString парсит строку HH:MM или HH:MM:SS
func NewTimeStringFromString(s string) (TimeString, error) {
	t, err := parse(s)
	if err != nil {
		return "", err
	}
	return TimeString(t.Format(timeLayout)), nil
}

// TimeStringFromMinutes создает TimeString из количества минут от начала суток
func TimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes >= minutesPerDay {
		return "", ErrTimeOverflow
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

func parse(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(timeLayoutSeconds, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidTimeString
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	_, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return ErrInvalidTimeString
	}
	return nil
}

// Minutes возвращает количество минут от начала суток
func (t TimeString) Minutes() int {
	parsed, err := parse(string(t))
	if err != nil {
		return 0
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// AddMinutes прибавляет минуты, не выходя за пределы суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return TimeStringFromMinutes(t.Minutes() + minutes)
}

// IsBefore возвращает true, если t раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter возвращает true, если t позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// On возвращает момент времени в указанную дату и часовом поясе
// Дата берётся из day (год, месяц, день), часы и минуты из t
func (t TimeString) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	minutes := t.Minutes()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}

// Scan реализует sql.Scanner (колонки TIME в Postgres)
func (t *TimeString) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}

	parsed, err := NewTimeStringFromString(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

// UnmarshalJSON валидирует формат при декодировании
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*t = ""
		return nil
	}
	parsed, err := NewTimeStringFromString(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
