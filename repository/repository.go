// Package repository wraps all document access behind per-entity interfaces
// so handlers stay testable and the consistency rules for denormalized
// counters live in one place.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Typed outcomes the handlers map onto HTTP statuses. Anything else coming
// out of a repository is an infrastructure failure (store unreachable,
// timeout) and maps to 500.
var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a unique constraint rejected the write.
	ErrConflict = errors.New("record already exists")
)

// Page carries validated pagination parameters.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NewPage clamps raw pagination input to sane bounds.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return Page{Number: number, Size: size}
}

// translateErr maps driver errors onto the repository taxonomy. Requires
// gorm's TranslateError so unique violations arrive as ErrDuplicatedKey.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
