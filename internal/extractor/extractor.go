package extractor

import (
	"github.com/ramkansal/leadfang/pkg/plugin"
)

// Contact is the best-effort contact candidate found in one text blob.
// Empty fields mean nothing matched.
type Contact struct {
	Email   string
	Phone   string
	Address string
}

// Record returns the contact as a partial CompanyRecord.
func (c Contact) Record() plugin.CompanyRecord {
	return plugin.CompanyRecord{
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

// Registry holds the built-in text extractors.
type Registry struct {
	emails    *EmailsExtractor
	phones    *PhonesExtractor
	addresses *AddressExtractor
}

// NewRegistry creates a registry with all built-in extractors.
func NewRegistry() *Registry {
	return &Registry{
		emails:    NewEmailsExtractor(),
		phones:    NewPhonesExtractor(),
		addresses: NewAddressExtractor(),
	}
}

// Extract runs every extractor independently against the same text after
// folding it with NormalizeText.
func (r *Registry) Extract(text string) Contact {
	text = NormalizeText(text)
	if text == "" {
		return Contact{}
	}
	return Contact{
		Email:   r.emails.Extract(text),
		Phone:   r.phones.Extract(text),
		Address: r.addresses.Extract(text),
	}
}
