// Package common: errors.go defines the errors shared by every engagement module.
// Handlers use them to tell problem kinds apart and pick the response status.
package common

import (
	"errors"
	"fmt"
)

// Input errors
var (
	// ErrInvalidAction: the action kind is not one of the known point actions
	ErrInvalidAction = errors.New("نوع النشاط غير معروف")
	// ErrInvalidUser: the user id is empty
	ErrInvalidUser = errors.New("معرف المستخدم مطلوب")
	// ErrInvalidSortKey: the ranking sort key is not supported
	ErrInvalidSortKey = errors.New("مفتاح الترتيب غير مدعوم")
	// ErrInvalidArgument: any other malformed argument
	ErrInvalidArgument = errors.New("قيمة غير صالحة")
)

// Lookup errors
var (
	// ErrNotFound: the requested ledger, profile or user does not exist
	ErrNotFound = errors.New("غير موجود")
)

// Access errors
var (
	// ErrUnauthenticated: no caller identity on the request
	ErrUnauthenticated = errors.New("يجب تسجيل الدخول")
	// ErrForbidden: the caller's roles do not grant the capability
	ErrForbidden = errors.New("ليس لديك صلاحية لهذا الإجراء")
)

// Storage errors
var (
	// ErrStorage: the database or transaction failed; nothing was committed
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a database failure with the operation that hit it.
// errors.Is(err, ErrStorage) holds for every StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err as a StorageError. nil stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
