package domain

import (
	"strings"
	"time"
)

// LeadScore grades how engaged a registered player was.
type LeadScore string

const (
	LeadCool LeadScore = "cool"
	LeadWarm LeadScore = "warm"
	LeadHot  LeadScore = "hot"
)

// LeadScoreFor grades a finished game by correct answers.
func LeadScoreFor(correctAnswers int) LeadScore {
	switch {
	case correctAnswers >= 10:
		return LeadHot
	case correctAnswers >= 5:
		return LeadWarm
	}
	return LeadCool
}

// Player is a registered contestant.
type Player struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Company         string    `json:"company,omitempty"`
	JobTitle        string    `json:"jobTitle,omitempty"`
	CompanySize     string    `json:"companySize,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	ProductInterest []string  `json:"productInterest,omitempty"`
	MarketingOptIn  bool      `json:"marketingOptIn"`
	PartnerOptIn    bool      `json:"partnerOptIn"`
	LeadScore       LeadScore `json:"leadScore"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DisplayName is the name shown on the leaderboard.
func (p Player) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ShortName is the first name and last initial, as shown on the admin activity feed.
func (p Player) ShortName() string {
	last := strings.TrimSpace(p.LastName)
	if last == "" {
		return strings.TrimSpace(p.FirstName)
	}
	return strings.TrimSpace(p.FirstName) + " " + string([]rune(last)[:1]) + "."
}

// Registration is the input of player registration.
type Registration struct {
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email"`
	Company         string   `json:"company"`
	JobTitle        string   `json:"jobTitle"`
	CompanySize     string   `json:"companySize"`
	Phone           string   `json:"phone"`
	ProductInterest []string `json:"productInterest"`
	MarketingOptIn  bool     `json:"marketingOptIn"`
	PartnerOptIn    bool     `json:"partnerOptIn"`
}

// Normalize trims whitespace and lower-cases the email.
func (r Registration) Normalize() Registration {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Company = strings.TrimSpace(r.Company)
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.CompanySize = strings.TrimSpace(r.CompanySize)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

// Validate checks the required fields.
func (r Registration) Validate() error {
	if r.FirstName == "" || r.LastName == "" || r.Email == "" {
		return ErrInvalidRegistration
	}
	if !strings.Contains(r.Email, "@") {
		return ErrInvalidRegistration
	}
	return nil
}
