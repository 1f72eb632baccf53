package checkout

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"bumilestari/internal/models"
)

// Field names used by the checkout form. ApplyFieldChange and the
// per-field validators dispatch on these.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldStreet     = "address.street"
	FieldCity       = "address.city"
	FieldProvince   = "address.province"
	FieldPostalCode = "address.postalCode"
	FieldNotes      = "address.notes"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Indonesian mobile numbers: +62, 62 or 0 prefix, then 9-13 digits.
	phonePattern      = regexp.MustCompile(`^(\+62|62|0)[0-9]{9,13}$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
)

// ValidateField runs the validator for a single form field against its
// raw string value. It returns an empty string when the value is
// acceptable and a user-facing message otherwise. FieldNotes is
// optional and always passes.
func ValidateField(field, value string) string {
	switch field {
	case FieldName:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return "Nama wajib diisi"
		}
		// Rune count, not bytes: "é" is one character.
		if utf8.RuneCountInString(trimmed) < 2 {
			return "Nama minimal 2 karakter"
		}
	case FieldEmail:
		if value == "" {
			return "Email wajib diisi"
		}
		if !emailPattern.MatchString(value) {
			return "Format email tidak valid"
		}
	case FieldPhone:
		if value == "" {
			return "Nomor telepon wajib diisi"
		}
		stripped := strings.Join(strings.Fields(value), "")
		if !phonePattern.MatchString(stripped) {
			return "Gunakan nomor ponsel Indonesia yang valid"
		}
	case FieldStreet:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return "Alamat jalan wajib diisi"
		}
		if utf8.RuneCountInString(trimmed) < 10 {
			return "Alamat jalan minimal 10 karakter"
		}
	case FieldCity:
		if strings.TrimSpace(value) == "" {
			return "Kota wajib diisi"
		}
	case FieldProvince:
		if strings.TrimSpace(value) == "" {
			return "Provinsi wajib dipilih"
		}
		if !validProvince(value) {
			return fmt.Sprintf("Provinsi '%s' tidak dikenal", value)
		}
	case FieldPostalCode:
		if !postalCodePattern.MatchString(value) {
			return "Kode pos harus 5 digit"
		}
	}
	return ""
}

// RequiredFields lists every field that must validate before an order
// can be submitted, in display order.
func RequiredFields() []string {
	return []string{
		FieldName,
		FieldEmail,
		FieldPhone,
		FieldStreet,
		FieldCity,
		FieldProvince,
		FieldPostalCode,
	}
}

// ValidateCustomer runs every required field's validator against the
// customer data and returns the field-to-message map. An empty map
// means the form is fully valid.
func ValidateCustomer(c models.CustomerData) map[string]string {
	errors := make(map[string]string)
	for _, field := range RequiredFields() {
		if msg := ValidateField(field, customerFieldValue(c, field)); msg != "" {
			errors[field] = msg
		}
	}
	return errors
}

func validProvince(value string) bool {
	for _, p := range models.Provinces() {
		if p == value {
			return true
		}
	}
	return false
}

func customerFieldValue(c models.CustomerData, field string) string {
	switch field {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	case FieldStreet:
		return c.Address.Street
	case FieldCity:
		return c.Address.City
	case FieldProvince:
		return c.Address.Province
	case FieldPostalCode:
		return c.Address.PostalCode
	case FieldNotes:
		return c.Address.Notes
	}
	return ""
}
