// Package access decides who may do what: which dashboard a session lands on,
// which views it may open, and whether it may apply to an opportunity.
//
// The decision functions are synchronous and pure. They only ever see data
// that has already been resolved (a Session, an Opportunity, today's date);
// the collaborators that act on a decision (sign-in, navigation, opening a
// link) are invoked by Router, never by the decision functions themselves.
package access

import (
	"strings"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// Profile field names, as reported by MissingProfileFields.
const (
	FieldPhone              = "phone"
	FieldLocation           = "location"
	FieldDateOfBirth        = "dateOfBirth"
	FieldGender             = "gender"
	FieldOtherGender        = "otherGender"
	FieldQualification      = "qualification"
	FieldOtherQualification = "otherQualification"
	FieldFieldOfStudy       = "fieldOfStudy"
	FieldOtherFieldOfStudy  = "otherFieldOfStudy"
	FieldInstitution        = "institution"
)

// MissingProfileFields lists the required profile fields that are blank, in
// form order. A select field set to "Other" also requires its companion
// field.
func MissingProfileFields(p *model.UserProfile) []string {
	if p == nil {
		return []string{FieldPhone, FieldLocation, FieldDateOfBirth, FieldGender, FieldQualification, FieldFieldOfStudy, FieldInstitution}
	}

	var missing []string
	need := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	needIfOther := func(name, selected, value string) {
		if strings.EqualFold(strings.TrimSpace(selected), model.OtherOption) {
			need(name, value)
		}
	}

	need(FieldPhone, p.Phone)
	need(FieldLocation, p.Location)
	need(FieldDateOfBirth, p.DateOfBirth)
	need(FieldGender, p.Gender)
	needIfOther(FieldOtherGender, p.Gender, p.OtherGender)
	need(FieldQualification, p.Qualification)
	needIfOther(FieldOtherQualification, p.Qualification, p.OtherQualification)
	need(FieldFieldOfStudy, p.FieldOfStudy)
	needIfOther(FieldOtherFieldOfStudy, p.FieldOfStudy, p.OtherFieldOfStudy)
	need(FieldInstitution, p.Institution)

	return missing
}

// IsProfileComplete reports whether every required profile field is filled.
func IsProfileComplete(p *model.UserProfile) bool {
	return p != nil && len(MissingProfileFields(p)) == 0
}
