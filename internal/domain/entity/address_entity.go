package entity

import "time"

// ResidentialAddress is keyed by user; the schema allows many per user but
// the service keeps one.
type ResidentialAddress struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type AddressFields struct {
	UserID  *string `json:"user_id"`
	Country *string `json:"country" binding:"omitempty,max=256"`
	City    *string `json:"city" binding:"omitempty,max=256"`
	State   *string `json:"state" binding:"omitempty,max=256"`
	Zip     *string `json:"zip" binding:"omitempty,max=5"`
}

func (a *ResidentialAddress) Owner() string          { return a.UserID }
func (a *ResidentialAddress) SetOwner(userID string) { a.UserID = userID }

func (a *ResidentialAddress) Apply(f AddressFields) {
	if f.Country != nil {
		a.Country = *f.Country
	}
	if f.City != nil {
		a.City = *f.City
	}
	if f.State != nil {
		a.State = *f.State
	}
	if f.Zip != nil {
		a.Zip = *f.Zip
	}
}

func (a *ResidentialAddress) Missing() []string {
	var out []string
	out = missingString(out, "country", a.Country)
	out = missingString(out, "city", a.City)
	out = missingString(out, "state", a.State)
	out = missingString(out, "zip", a.Zip)
	return out
}

var _ Dependent[AddressFields] = (*ResidentialAddress)(nil)
