package entity

import "time"

// Profile is the one-to-one personal record of a user.
type Profile struct {
	ID          string    `json:"-"`
	UserID      string    `json:"user_id"`
	MiddleName  string    `json:"middle_name"`
	LastName    string    `json:"last_name"`
	DOB         Date      `json:"dob"`
	Nationality string    `json:"nationality"`
	PhoneNumber string    `json:"phone_number"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ProfileFields is the caller-supplied field set; nil means "not provided".
// UserID is accepted for compatibility and always ignored.
type ProfileFields struct {
	UserID      *string `json:"user_id"`
	MiddleName  *string `json:"middle_name" binding:"omitempty,max=256"`
	LastName    *string `json:"last_name" binding:"omitempty,max=256"`
	DOB         *Date   `json:"dob"`
	Nationality *string `json:"nationality" binding:"omitempty,max=256"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=13,phone"`
}

func (p *Profile) Owner() string          { return p.UserID }
func (p *Profile) SetOwner(userID string) { p.UserID = userID }

func (p *Profile) Apply(f ProfileFields) {
	if f.MiddleName != nil {
		p.MiddleName = *f.MiddleName
	}
	if f.LastName != nil {
		p.LastName = *f.LastName
	}
	if f.DOB != nil {
		p.DOB = *f.DOB
	}
	if f.Nationality != nil {
		p.Nationality = *f.Nationality
	}
	if f.PhoneNumber != nil {
		p.PhoneNumber = *f.PhoneNumber
	}
}

func (p *Profile) Missing() []string {
	var out []string
	out = missingString(out, "middle_name", p.MiddleName)
	out = missingString(out, "last_name", p.LastName)
	if p.DOB.IsZero() {
		out = append(out, "dob")
	}
	out = missingString(out, "nationality", p.Nationality)
	out = missingString(out, "phone_number", p.PhoneNumber)
	return out
}

var _ Dependent[ProfileFields] = (*Profile)(nil)
