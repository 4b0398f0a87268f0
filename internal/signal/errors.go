package signal

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat - входной файл не соответствует схеме time/FHR/UC
	ErrFormat = errors.New("invalid signal format")
	// ErrDegenerateInput - по данным нельзя оценить частоту дискретизации
	ErrDegenerateInput = errors.New("degenerate signal input")
	// ErrIndexOutOfRange - индекс сегмента вне [0, total)
	ErrIndexOutOfRange = errors.New("segment index out of range")
)

// FormatError описывает конкретную ошибку разбора входного файла
type FormatError struct {
	Line   int    // номер строки файла, 0 - заголовок
	Column string // имя колонки, если известно
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Reason
	if e.Column != "" {
		msg = fmt.Sprintf("column %s: %s", e.Column, msg)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrFormat, msg)
}

// Unwrap позволяет errors.Is(err, ErrFormat)
func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFormat, e.Err}
	}
	return []error{ErrFormat}
}

// IndexError возвращает обернутую ErrIndexOutOfRange с контекстом
func IndexError(index, total int) error {
	return fmt.Errorf("%w: index %d, total %d", ErrIndexOutOfRange, index, total)
}
