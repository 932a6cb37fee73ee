// Package errors provides custom error types for the taxparams system.
// These errors enable programmatic error checking with errors.Is and
// carry enough context to identify the offending parameter and year.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the taxparams system
var (
	// ErrNotFound indicates that a requested parameter was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that a provided adjustment was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfRange indicates that a requested year lies outside the
	// parameter set's valid year range
	ErrOutOfRange = errors.New("year out of range")

	// ErrMissingRate indicates that an indexed parameter requires a rate
	// for a year absent from the rate table
	ErrMissingRate = errors.New("missing index rate")
)

// NotFoundError represents an error when a parameter is not found
type NotFoundError struct {
	Resource string
	Name     string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Name)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, name string) *NotFoundError {
	return &NotFoundError{Resource: resource, Name: name}
}

// ValidationError represents a validation failure for an adjustment
type ValidationError struct {
	Param   string
	Year    int
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	switch {
	case e.Param != "" && e.Year != 0:
		return fmt.Sprintf("validation failed for %s in %d: %s", e.Param, e.Year, e.Message)
	case e.Param != "":
		return fmt.Sprintf("validation failed for %s: %s", e.Param, e.Message)
	default:
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(param string, year int, message string) *ValidationError {
	return &ValidationError{Param: param, Year: year, Message: message}
}

// RangeError represents a requested year outside the parameter set's
// valid year range
type RangeError struct {
	Param     string
	Year      int
	StartYear int
	EndYear   int
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: year %d outside valid range [%d, %d]",
		e.Param, e.Year, e.StartYear, e.EndYear)
}

// Is implements errors.Is support
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// NewRangeError creates a new RangeError
func NewRangeError(param string, year, startYear, endYear int) *RangeError {
	return &RangeError{Param: param, Year: year, StartYear: startYear, EndYear: endYear}
}

// MissingRateError represents a missing rate table entry for a year in
// which an indexed parameter must be projected
type MissingRateError struct {
	Param string
	Year  int
}

// Error implements the error interface
func (e *MissingRateError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("no index rate for %s in year %d", e.Param, e.Year)
	}
	return fmt.Sprintf("no index rate for year %d", e.Year)
}

// Is implements errors.Is support
func (e *MissingRateError) Is(target error) bool {
	return target == ErrMissingRate
}

// NewMissingRateError creates a new MissingRateError
func NewMissingRateError(param string, year int) *MissingRateError {
	return &MissingRateError{Param: param, Year: year}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsOutOfRange checks if an error is a year range error
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// IsMissingRate checks if an error is a missing rate error
func IsMissingRate(err error) bool {
	return errors.Is(err, ErrMissingRate)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
