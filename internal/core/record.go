package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for record dates.
const DateLayout = "2006-01-02"

type (
	// Record is a single dated financial entry ("nota") owned by a user.
	// JSON field names follow the public API contract.
	Record struct {
		ID      int64  `json:"id"`
		UserID  int64  `json:"user_id,omitempty"`
		Date    string `json:"data"`
		Company string `json:"empresa"`
		Number  string `json:"numero"`
		Amount  Money  `json:"valor"`
		Note    string `json:"observacoes"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCompany  = errors.New("empty company name")
	ErrEmptyNumber   = errors.New("empty document number")
	ErrInvalidAmount = errors.New("invalid amount")
)

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if len(s) != len(DateLayout) {
		return ErrInvalidDate
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the record's calendar month key ("YYYY-MM").
func (r Record) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}

func (r Record) Validate() error {
	if err := ValidateDate(r.Date); err != nil {
		return err
	}
	if strings.TrimSpace(r.Company) == "" {
		return ErrEmptyCompany
	}
	if len(r.Company) > 200 {
		return errors.New("company name too long (max 200 characters)")
	}
	if strings.TrimSpace(r.Number) == "" {
		return ErrEmptyNumber
	}
	if len(r.Number) > 200 {
		return errors.New("document number too long (max 200 characters)")
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if len(r.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}
