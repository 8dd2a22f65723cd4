// Package models holds the establishment aggregate and the search value
// objects shared by the store and the search executor.
package models

import (
	"fmt"
	"regexp"
	"time"

	"immersion/pkg/geo"
)

// siretPattern matches the 14-digit SIRET business-establishment identifier.
var siretPattern = regexp.MustCompile(`^\d{14}$`)

// ValidSiret reports whether s is a well-formed SIRET.
func ValidSiret(s string) bool {
	return siretPattern.MatchString(s)
}

// ContactMode is the preferred way to reach an establishment's contact.
type ContactMode string

const (
	ContactModeEmail    ContactMode = "EMAIL"
	ContactModePhone    ContactMode = "PHONE"
	ContactModeInPerson ContactMode = "IN_PERSON"
)

// NumberEmployeesRange is the INSEE employee-count bracket, e.g. "10-19".
type NumberEmployeesRange string

// Address is a geocoded postal address.
type Address struct {
	StreetNumberAndAddress string `json:"streetNumberAndAddress"`
	PostCode               string `json:"postCode"`
	City                   string `json:"city"`
	DepartmentCode         string `json:"departmentCode"`
}

// Format renders the address as a single display line.
func (a Address) Format() string {
	return fmt.Sprintf("%s %s %s", a.StreetNumberAndAddress, a.PostCode, a.City)
}

// Location is one geocoded site of an establishment. The ID is generated
// locally at insertion time, not by any upstream referential.
type Location struct {
	ID       string         `json:"id"`
	Address  Address        `json:"address"`
	Position geo.Coordinate `json:"position"`
}

// EstablishmentEntity is a host establishment registered in the directory.
type EstablishmentEntity struct {
	Siret                  string               `json:"siret"`
	Name                   string               `json:"name"`
	CustomizedName         string               `json:"customizedName,omitempty"`
	Locations              []Location           `json:"locations"`
	NafCode                string               `json:"nafCode"`
	NafLabel               string               `json:"nafLabel"`
	NumberEmployeesRange   NumberEmployeesRange `json:"numberEmployeesRange"`
	IsOpen                 bool                 `json:"isOpen"`
	IsSearchable           bool                 `json:"isSearchable"`
	SearchableByStudents   bool                 `json:"searchableByStudents"`
	SearchableByJobSeekers bool                 `json:"searchableByJobSeekers"`
	MaxContactsPerWeek     int                  `json:"maxContactsPerWeek"`
	Website                string               `json:"website,omitempty"`
	AdditionalInformation  string               `json:"additionalInformation,omitempty"`
	NextAvailabilityDate   *time.Time           `json:"nextAvailabilityDate,omitempty"`
	FitForDisabledWorkers  bool                 `json:"fitForDisabledWorkers"`
	CreatedAt              time.Time            `json:"createdAt"`
	UpdatedAt              time.Time            `json:"updatedAt"`
	LastInseeCheckDate     *time.Time           `json:"lastInseeCheckDate,omitempty"`
}

// DisplayName prefers the locally customized name over the legal one.
func (e EstablishmentEntity) DisplayName() string {
	if e.CustomizedName != "" {
		return e.CustomizedName
	}
	return e.Name
}

// OfferEntity is one immersion offer of an establishment, keyed by the owning
// siret rather than an embedded reference to avoid aggregate cycles.
type OfferEntity struct {
	Siret            string    `json:"siret"`
	RomeCode         string    `json:"romeCode"`
	RomeLabel        string    `json:"romeLabel"`
	AppellationCode  string    `json:"appellationCode"`
	AppellationLabel string    `json:"appellationLabel"`
	Score            float64   `json:"score"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ContactEntity is the optional single contact person of an establishment.
type ContactEntity struct {
	ID         string      `json:"id"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Job        string      `json:"job"`
	Mode       ContactMode `json:"contactMode"`
	CopyEmails []string    `json:"copyEmails,omitempty"`
}

// EstablishmentAggregate is the unit of write: the establishment plus its
// owned offers and optional contact. Offers and contact have no lifecycle
// outside their aggregate.
type EstablishmentAggregate struct {
	Establishment EstablishmentEntity `json:"establishment"`
	Offers        []OfferEntity       `json:"offers"`
	Contact       *ContactEntity      `json:"contact,omitempty"`
}

// Validate enforces the aggregate invariants: a well-formed siret and at
// least one geocoded location.
func (a EstablishmentAggregate) Validate() error {
	if !ValidSiret(a.Establishment.Siret) {
		return fmt.Errorf("invalid siret %q: expected 14 digits", a.Establishment.Siret)
	}
	if len(a.Establishment.Locations) == 0 {
		return fmt.Errorf("establishment %s has no location", a.Establishment.Siret)
	}
	return nil
}
