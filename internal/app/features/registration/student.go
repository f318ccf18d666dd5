package registration

import (
	"net/url"
	"time"

	"github.com/dalemusser/admissions/internal/app/system/cascade"
	"github.com/dalemusser/admissions/internal/app/system/htmlsanitize"
	"github.com/dalemusser/admissions/internal/app/system/normalize"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/domain/models"
)

// Country is recorded on every address; the lookup only covers the Philippines.
const Country = "Philippines"

const dateLayout = "2006-01-02"

// buildStudent maps submitted values onto a Student. Free text is reduced
// to plain text, the permanent address follows the present one when
// mirrored, and the age is taken at now.
func (h *Handler) buildStudent(values url.Values, addrs addresses, now time.Time) models.Student {
	get := func(name string) string { return htmlsanitize.PlainText(values.Get(name)) }
	on := func(name string) bool { return wizard.Checked(values.Get(name)) }

	st := models.Student{
		SchoolYear:          get("schoolYear"),
		SchoolTerm:          get("schoolTerm"),
		CampusCode:          get("campus"),
		ProgramFirstChoice:  get("firstChoice"),
		ProgramSecondChoice: get("secondChoice"),
		StudentType:         get("studentType"),
		EntryLevel:          get("entryLevel"),

		FirstName:   normalize.Name(get("firstName")),
		MiddleName:  normalize.Name(get("middleName")),
		LastName:    normalize.Name(get("lastName")),
		Suffix:      normalize.Name(get("suffix")),
		Gender:      get("gender"),
		CivilStatus: get("civilStatus"),
		BirthDate:   get("birthDate"),
		BirthPlace:  normalize.Name(get("birthPlace")),
		CitizenOf:   normalize.Name(get("nationality")),
		Religion:    get("religion"),
		Disability:  on("disability"),
		Indigenous:  on("indigenous"),

		MobileNumber: normalize.Phone(get("mobileNumber")),
		TelephoneNo:  normalize.Phone(get("telephoneNo")),
		Email:        normalize.Email(get("emailAddress")),

		FatherName:       normalize.Name(get("fatherName")),
		FatherOccupation: get("fatherOccupation"),
		MotherName:       normalize.Name(get("motherName")),
		MotherOccupation: get("motherOccupation"),
		GuardianContact:  normalize.Phone(get("guardianContact")),

		LastSchoolAttended: get("lastSchool"),
		SchoolType:         get("schoolType"),
		AnnualIncome:       get("annualIncome"),

		RequirementAgreement: on("truthfulInfo") && on("dataPrivacy"),
	}

	st.Present = toAddress(addrs[h.Form.Mirror.From])
	if h.mirrored(values) {
		st.Permanent = st.Present
	} else {
		st.Permanent = toAddress(addrs[h.Form.Mirror.To])
	}

	if birth, err := time.Parse(dateLayout, st.BirthDate); err == nil {
		if age, ok := models.AgeOn(birth, now); ok {
			st.AgeAtEnrollment = &age
		}
	}
	return st
}

func toAddress(a *cascade.AddressForm) models.Address {
	if a == nil {
		return models.Address{Country: Country}
	}
	return models.Address{
		Country:      Country,
		RegionCode:   a.Value(models.LevelRegion),
		Region:       a.Select(models.LevelRegion).Name(),
		ProvinceCode: a.Value(models.LevelProvince),
		Province:     a.Select(models.LevelProvince).Name(),
		CityCode:     a.Value(models.LevelCity),
		City:         a.Select(models.LevelCity).Name(),
		BarangayCode: a.Value(models.LevelBarangay),
		Barangay:     a.Select(models.LevelBarangay).Name(),
		Street:       htmlsanitize.PlainText(a.Part("street")),
		PostalCode:   htmlsanitize.PlainText(a.Part("postal_code")),
		Complete:     htmlsanitize.PlainText(a.Part("complete")),
	}
}
