// internal/domain/models/student.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student status labels derived from StudentID.
const (
	StatusEnrolled    = "Enrolled"
	StatusNotEnrolled = "Not Enrolled"
)

// Address is one of a student's two addresses (present or permanent).
// Geographic names are stored alongside their PSGC codes so the
// dashboard can display them without another lookup.
type Address struct {
	Country      string `bson:"country,omitempty" json:"country,omitempty"`
	RegionCode   string `bson:"region_code,omitempty" json:"region_code,omitempty"`
	Region       string `bson:"region,omitempty" json:"region,omitempty"`
	ProvinceCode string `bson:"province_code,omitempty" json:"province_code,omitempty"`
	Province     string `bson:"province,omitempty" json:"province,omitempty"`
	CityCode     string `bson:"city_code,omitempty" json:"city_code,omitempty"`
	City         string `bson:"city,omitempty" json:"city,omitempty"`
	BarangayCode string `bson:"barangay_code,omitempty" json:"barangay_code,omitempty"`
	Barangay     string `bson:"barangay,omitempty" json:"barangay,omitempty"`
	Street       string `bson:"street,omitempty" json:"street,omitempty"`
	PostalCode   string `bson:"postal_code,omitempty" json:"postal_code,omitempty" validate:"omitempty,numeric,max=10" label:"Postal code"`
	Complete     string `bson:"complete,omitempty" json:"complete,omitempty"`
}

// Student is a submitted admission registration.
// *_ci fields are folded (lowercase, diacritics stripped) for search.
type Student struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference string             `bson:"reference" json:"reference"`

	// Admission info
	SchoolYear          string `bson:"school_year,omitempty" json:"school_year,omitempty" validate:"required" label:"School year"`
	SchoolTerm          string `bson:"school_term,omitempty" json:"school_term,omitempty" validate:"required" label:"School term"`
	CampusCode          string `bson:"campus_code,omitempty" json:"campus_code,omitempty"`
	ProgramFirstChoice  string `bson:"program_first_choice,omitempty" json:"program_first_choice,omitempty" validate:"required" label:"First program choice"`
	ProgramFirstCI      string `bson:"program_first_choice_ci,omitempty" json:"-"`
	ProgramSecondChoice string `bson:"program_second_choice,omitempty" json:"program_second_choice,omitempty"`
	EntryLevel          string `bson:"entry_level,omitempty" json:"entry_level,omitempty"`
	StudentType         string `bson:"student_type,omitempty" json:"student_type,omitempty"`

	// Personal info
	FullName      string `bson:"full_name" json:"full_name"`
	FullNameCI    string `bson:"full_name_ci" json:"-"`
	FirstName     string `bson:"first_name" json:"first_name" validate:"required,max=100" label:"First name"`
	MiddleName    string `bson:"middle_name,omitempty" json:"middle_name,omitempty" validate:"max=100" label:"Middle name"`
	LastName      string `bson:"last_name" json:"last_name" validate:"required,max=100" label:"Last name"`
	Suffix        string `bson:"suffix,omitempty" json:"suffix,omitempty" validate:"max=20" label:"Suffix"`
	Gender        string `bson:"gender,omitempty" json:"gender,omitempty"`
	CivilStatus   string `bson:"civil_status,omitempty" json:"civil_status,omitempty"`
	BirthDate     string `bson:"birth_date,omitempty" json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02" label:"Birth date"`
	BirthPlace    string `bson:"birth_place,omitempty" json:"birth_place,omitempty"`
	BirthCity     string `bson:"birth_city,omitempty" json:"birth_city,omitempty"`
	BirthProvince string `bson:"birth_province,omitempty" json:"birth_province,omitempty"`
	BirthCountry  string `bson:"birth_country,omitempty" json:"birth_country,omitempty"`
	CitizenOf     string `bson:"citizen_of,omitempty" json:"citizen_of,omitempty"`
	Religion      string `bson:"religion,omitempty" json:"religion,omitempty"`
	Disability    bool   `bson:"disability" json:"disability"`
	Indigenous    bool   `bson:"indigenous" json:"indigenous"`

	// Contact info
	Present      Address `bson:"present" json:"present"`
	Permanent    Address `bson:"permanent" json:"permanent"`
	MobileNumber string  `bson:"mobile_number,omitempty" json:"mobile_number,omitempty" validate:"omitempty,max=20" label:"Mobile number"`
	TelephoneNo  string  `bson:"telephone_no,omitempty" json:"telephone_no,omitempty" validate:"omitempty,max=20" label:"Telephone number"`
	Email        string  `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email" label:"Email address"`

	// Family
	FatherName       string `bson:"father_name,omitempty" json:"father_name,omitempty"`
	FatherOccupation string `bson:"father_occupation,omitempty" json:"father_occupation,omitempty"`
	MotherName       string `bson:"mother_name,omitempty" json:"mother_name,omitempty"`
	MotherOccupation string `bson:"mother_occupation,omitempty" json:"mother_occupation,omitempty"`
	GuardianContact  string `bson:"guardian_contact,omitempty" json:"guardian_contact,omitempty" validate:"omitempty,max=20" label:"Guardian contact"`

	// Education
	LastSchoolAttended string `bson:"last_school_attended,omitempty" json:"last_school_attended,omitempty"`
	SchoolType         string `bson:"school_type,omitempty" json:"school_type,omitempty"`
	AnnualIncome       string `bson:"annual_income,omitempty" json:"annual_income,omitempty"`

	RequirementAgreement bool `bson:"requirement_agreement" json:"requirement_agreement"`

	// StudentID is assigned by the registrar once the applicant enrolls.
	StudentID string `bson:"student_id,omitempty" json:"student_id,omitempty"`

	// EnrollmentChance is a percentage in [0, 100]; nil when not scored.
	EnrollmentChance *float64 `bson:"enrollment_chance,omitempty" json:"enrollment_chance,omitempty"`
	AgeAtEnrollment  *int     `bson:"age_at_enrollment,omitempty" json:"age_at_enrollment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Status returns "Enrolled" once a student ID has been assigned.
func (s Student) Status() string {
	if s.StudentID != "" {
		return StatusEnrolled
	}
	return StatusNotEnrolled
}

// EnrollmentChanceDisplay formats the chance for the admin table.
func (s Student) EnrollmentChanceDisplay() string {
	if s.EnrollmentChance == nil {
		return "Enrollment chance: N/A"
	}
	return fmt.Sprintf("Enrollment chance: %.2f%%", *s.EnrollmentChance)
}

// DisplayName prefers the full name, then the first program choice.
func (s Student) DisplayName() string {
	switch {
	case s.FullName != "":
		return s.FullName
	case s.ProgramFirstChoice != "":
		return s.ProgramFirstChoice
	default:
		return "No Name"
	}
}

// AgeOn returns the age in whole years of someone born on birth at the
// given date. ok is false if birth is zero or after on.
func AgeOn(birth, on time.Time) (age int, ok bool) {
	if birth.IsZero() || birth.After(on) {
		return 0, false
	}
	age = on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age, true
}

// NormalizeChance converts a probability-style chance (<= 1) into a
// percentage. Values already above 1 are returned unchanged.
func NormalizeChance(v float64) float64 {
	if v <= 1.0000001 {
		return v * 100.0
	}
	return v
}
