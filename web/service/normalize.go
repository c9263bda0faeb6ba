// Package service provides the business logic for credenza: permission
// resolution, contact dedup, enrollment management, bulk imports and the
// door registration flow.
package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeEmail trims and lower-cases an email address. Every lookup and
// every stored contact email goes through this, so the unique index on the
// contacts table is effectively case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TitleCase trims s and title-cases it per word. Idempotent: applying it
// twice yields the same result.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// ContactProfile is the validated shape every registration path feeds into
// the contact upsert. Empty fields mean "leave the stored value alone",
// never "clear it".
type ContactProfile struct {
	Email      string `json:"email" form:"email"`
	FirstName  string `json:"firstName" form:"firstName"`
	LastName   string `json:"lastName" form:"lastName"`
	Phone      string `json:"phone" form:"phone"`
	NationalId string `json:"nationalId" form:"nationalId"`
	Company    string `json:"company" form:"company"`
	Activity   string `json:"activity" form:"activity"`
	Profession string `json:"profession" form:"profession"`
	Commune    string `json:"commune" form:"commune"`
}

// contactFieldSetters maps the system field names used by form schemas and
// import headers onto profile fields.
var contactFieldSetters = map[string]func(*ContactProfile, string){
	"email":       func(p *ContactProfile, v string) { p.Email = v },
	"first_name":  func(p *ContactProfile, v string) { p.FirstName = v },
	"last_name":   func(p *ContactProfile, v string) { p.LastName = v },
	"phone":       func(p *ContactProfile, v string) { p.Phone = v },
	"national_id": func(p *ContactProfile, v string) { p.NationalId = v },
	"company":     func(p *ContactProfile, v string) { p.Company = v },
	"activity":    func(p *ContactProfile, v string) { p.Activity = v },
	"profession":  func(p *ContactProfile, v string) { p.Profession = v },
	"commune":     func(p *ContactProfile, v string) { p.Commune = v },
}

// IsContactField reports whether name is a recognized system contact field.
func IsContactField(name string) bool {
	_, ok := contactFieldSetters[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Set assigns value to the named system field. Unknown names are ignored
// and reported as false.
func (p *ContactProfile) Set(field, value string) bool {
	setter, ok := contactFieldSetters[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return false
	}
	setter(p, value)
	return true
}

// Normalize applies the field normalization contract: email lower-cased
// and trimmed, person/company style fields title-cased per word, the rest
// only trimmed. Deterministic and idempotent.
func (p *ContactProfile) Normalize() {
	p.Email = NormalizeEmail(p.Email)
	p.FirstName = TitleCase(p.FirstName)
	p.LastName = TitleCase(p.LastName)
	p.Company = TitleCase(p.Company)
	p.Activity = TitleCase(p.Activity)
	p.Profession = TitleCase(p.Profession)
	p.Commune = TitleCase(p.Commune)
	p.Phone = strings.TrimSpace(p.Phone)
	p.NationalId = strings.TrimSpace(p.NationalId)
}

// changes returns the non-empty fields as column assignments. The email is
// excluded: it is the identity key, not a mergeable attribute.
func (p *ContactProfile) changes() map[string]any {
	patch := map[string]any{}
	put := func(column, value string) {
		if value != "" {
			patch[column] = value
		}
	}
	put("first_name", p.FirstName)
	put("last_name", p.LastName)
	put("phone", p.Phone)
	put("national_id", p.NationalId)
	put("company", p.Company)
	put("activity", p.Activity)
	put("profession", p.Profession)
	put("commune", p.Commune)
	return patch
}
