package store

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxDataLength is the width of the tbl_test.data column.
const MaxDataLength = 255

var (
	ErrNotOpened   = errors.New("database not opened")
	ErrDataTooLong = errors.New("data exceeds column length")
)

// Record is a single row of tbl_test.
// ID is assigned by storage and never reused.
type Record struct {
	ID   int64  `json:"id" yaml:"id"`
	Data string `json:"data" yaml:"data"`
}

// ValidateData reports whether data fits in the data column.
func ValidateData(data string) error {
	if n := utf8.RuneCountInString(data); n > MaxDataLength {
		return fmt.Errorf("%w: %d > %d characters", ErrDataTooLong, n, MaxDataLength)
	}
	return nil
}
