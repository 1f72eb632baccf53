package models

// Address is the shipping destination collected at checkout. Notes is
// optional and never validated.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes,omitempty"`
}

// CustomerData holds everything the checkout form collects about the
// buyer. Validation lives in the checkout package; this is just shape.
type CustomerData struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// Provinces returns the fixed list the checkout form's province field
// must be chosen from.
func Provinces() []string {
	return []string{
		"Aceh",
		"Bali",
		"Banten",
		"DI Yogyakarta",
		"DKI Jakarta",
		"Jawa Barat",
		"Jawa Tengah",
		"Jawa Timur",
		"Kalimantan Timur",
		"Lampung",
		"Nusa Tenggara Barat",
		"Riau",
		"Sulawesi Selatan",
		"Sumatera Barat",
		"Sumatera Selatan",
		"Sumatera Utara",
	}
}
