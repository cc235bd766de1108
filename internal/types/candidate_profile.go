// Package types provides type definitions for structured data used throughout the resume parser.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// CandidateProfile is the canonical record extracted from a single resume.
// Optional fields are pointers so that an explicit null survives a round trip.
type CandidateProfile struct {
	// Personal information
	FirstName string  `json:"firstname"`
	LastName  string  `json:"lastname"`
	Email     string  `json:"email"`
	PhoneNo   string  `json:"phone_no"`
	Position  string  `json:"position"`
	ID        *string `json:"id"`
	Resume    string  `json:"resume"` // Source resume filename

	// Address
	Address1 string  `json:"address_1"`
	Address2 *string `json:"address_2"`
	Address3 *string `json:"address_3"`
	City     string  `json:"city"`

	// Description
	ShortDescription string `json:"short_description"`
	FullDescription  string `json:"full_description"`

	Skills    []string            `json:"skills"`
	Companies []CompanyExperience `json:"companies"`
	Projects  []Project           `json:"projects"`
}

// CompanyExperience is one employment entry.
type CompanyExperience struct {
	CompanyName     string  `json:"company_name"`
	Position        *string `json:"position"`
	JobDescription  string  `json:"job_description"`
	FromDate        string  `json:"from_date"` // YYYY-MM-DD
	ToDate          *string `json:"to_date"`   // YYYY-MM-DD, empty or null when unknown
	CurrentPosition bool    `json:"current_position"`
}

// Project is one explicitly mentioned project.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	URL          *string  `json:"url"`
	Technologies []string `json:"technologies"`
	Image        *string  `json:"image"`
}

// FullName joins first and last name.
func (p *CandidateProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// CurrentCompany returns the first company flagged as the current position, or nil.
func (p *CandidateProfile) CurrentCompany() *CompanyExperience {
	for i := range p.Companies {
		if p.Companies[i].CurrentPosition {
			return &p.Companies[i]
		}
	}
	return nil
}

// UnmarshalJSON decodes a profile, defaulting an absent skills list to empty.
func (p *CandidateProfile) UnmarshalJSON(data []byte) error {
	type alias CandidateProfile
	a := alias{Skills: []string{}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = CandidateProfile(a)
	return nil
}

// UnmarshalJSON decodes a project, defaulting an absent image to "".
// An explicit null is kept as nil.
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	empty := ""
	a := alias{Image: &empty}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Project(a)
	return nil
}
