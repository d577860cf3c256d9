package scanner

import (
	"errors"
	"fmt"
)

// ErrorClass tells the caller how a failure was handled
type ErrorClass int

const (
	// ClassTransient covers per-entry failures: the entry is dropped and the scan continues
	ClassTransient ErrorClass = iota
	// ClassUnit covers a traversal unit that could not be opened at all
	ClassUnit
	// ClassInput covers a bad root path, reported before any worker starts
	ClassInput
	// ClassConfig covers invalid options, reported before any worker starts
	ClassConfig
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassUnit:
		return "unit"
	case ClassInput:
		return "input"
	case ClassConfig:
		return "config"
	default:
		return "unknown"
	}
}

var (
	ErrRootNotFound  = errors.New("root does not exist")
	ErrNotDirectory  = errors.New("root is not a directory")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrShortRead     = errors.New("file size changed while hashing")
)

// ScanError carries the operation and path a failure belongs to
type ScanError struct {
	Op    string
	Path  string
	Class ErrorClass
	Err   error
}

func (e *ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

func inputError(op, path string, err error) error {
	return &ScanError{Op: op, Path: path, Class: ClassInput, Err: err}
}

func configError(op string, err error) error {
	return &ScanError{Op: op, Class: ClassConfig, Err: fmt.Errorf("%w: %w", ErrInvalidConfig, err)}
}

// ClassOf returns the class of a ScanError, or ClassTransient for anything else
func ClassOf(err error) ErrorClass {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Class
	}
	return ClassTransient
}
