package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

const organizationType = "Organization"

// addressKeys is the order in which PostalAddress parts are joined.
var addressKeys = []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"}

// Organization is the contact data carried by one schema.org Organization
// JSON-LD block.
type Organization struct {
	Name         string
	Email        string
	Phone        string
	AddressParts []string
}

// Record returns the organization as a partial CompanyRecord.
func (o Organization) Record() plugin.CompanyRecord {
	return plugin.CompanyRecord{
		CompanyName: o.Name,
		Email:       o.Email,
		Phone:       o.Phone,
		Address:     strings.Join(o.AddressParts, ", "),
	}
}

// TypeTags is the normalized set of values of a JSON-LD @type field.
type TypeTags map[string]struct{}

// ParseTypeTags accepts a single value or an array of values.
func ParseTypeTags(v any) TypeTags {
	tags := make(TypeTags)
	switch t := v.(type) {
	case nil:
	case []any:
		for _, item := range t {
			if item != nil {
				tags[fmt.Sprint(item)] = struct{}{}
			}
		}
	default:
		tags[fmt.Sprint(t)] = struct{}{}
	}
	return tags
}

// Has reports exact membership.
func (t TypeTags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Mentions reports whether any tag contains sub, e.g. "LocalOrganization".
func (t TypeTags) Mentions(sub string) bool {
	for tag := range t {
		if strings.Contains(tag, sub) {
			return true
		}
	}
	return false
}

// IsOrganization matches Organization exactly, falling back to a substring
// match so that subtypes such as EducationalOrganization qualify too.
func (t TypeTags) IsOrganization() bool {
	return t.Has(organizationType) || t.Mentions(organizationType)
}

// StructuredParser reads Organization data out of JSON-LD blocks.
type StructuredParser struct {
	// Repair enables a second, lenient decode of malformed payloads.
	Repair bool
}

func NewStructuredParser(repair bool) *StructuredParser {
	return &StructuredParser{Repair: repair}
}

// FirstOrganization returns the first block that decodes to an object
// typed as an Organization. Blocks that fail to decode are skipped.
func (p *StructuredParser) FirstOrganization(blocks []string) (Organization, bool) {
	for _, raw := range blocks {
		data, err := p.decode(raw)
		if err != nil {
			continue
		}
		if !ParseTypeTags(data["@type"]).IsOrganization() {
			continue
		}
		return organizationFrom(data), true
	}
	return Organization{}, false
}

// Merge fills the empty fields of rec from the first Organization block.
// Populated fields are never overwritten.
func (p *StructuredParser) Merge(rec plugin.CompanyRecord, blocks []string) plugin.CompanyRecord {
	if org, ok := p.FirstOrganization(blocks); ok {
		rec.Fill(org.Record())
	}
	return rec
}

func (p *StructuredParser) decode(raw string) (map[string]any, error) {
	var data map[string]any
	err := json.Unmarshal([]byte(raw), &data)
	if err != nil && p.Repair {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, eris.Wrap(err, "decode json-ld")
		}
		err = json.Unmarshal([]byte(repaired), &data)
	}
	if err != nil {
		return nil, eris.Wrap(err, "decode json-ld")
	}
	if data == nil {
		return nil, eris.New("json-ld payload is not an object")
	}
	return data, nil
}

func organizationFrom(data map[string]any) Organization {
	org := Organization{
		Name:  stringField(data, "name"),
		Email: stringField(data, "email"),
		Phone: stringField(data, "telephone"),
	}
	// A plain-string address has no defined structure and is ignored.
	if addr, ok := data["address"].(map[string]any); ok {
		for _, key := range addressKeys {
			if part := stringField(addr, key); part != "" {
				org.AddressParts = append(org.AddressParts, part)
			}
		}
	}
	return org
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
