package engine

import (
	"sort"

	validation "github.com/jellydator/validation"

	"github.com/allisson/anonymizer/internal/transform"
	customValidation "github.com/allisson/anonymizer/internal/validation"
)

// Profile is a named preset bundling a mode with run behavior.
//
// FullySynthetic disables vault storage: every output is generated fresh and
// nothing can be reversed. SharedSeed pins the master seed across runs so the
// same original maps to the same replacement in every dataset.
type Profile struct {
	Name           string         `json:"name"`
	Mode           transform.Mode `json:"mode"`
	FullySynthetic bool           `json:"fully_synthetic"`
	SharedSeed     bool           `json:"shared_seed"`
	Description    string         `json:"description"`
}

// Validate checks the profile's fields.
func (p Profile) Validate() error {
	return customValidation.WrapValidationError(validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&p.Mode, validation.Required, validation.In(
			transform.ModeFake, transform.ModeFPE, transform.ModeHMAC, transform.ModeHybrid,
		)),
	))
}

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "default"

var profiles = map[string]Profile{
	"default": {
		Name:        "default",
		Mode:        transform.ModeHybrid,
		Description: "cipher-backed structured types, corpus draws for the rest",
	},
	"gdpr-compliant": {
		Name:        "gdpr-compliant",
		Mode:        transform.ModeFPE,
		Description: "format-preserving encryption for every column",
	},
	"test-data": {
		Name:           "test-data",
		Mode:           transform.ModeFake,
		FullySynthetic: true,
		Description:    "fully synthetic output, nothing stored or reversible",
	},
	"fast-hash": {
		Name:        "fast-hash",
		Mode:        transform.ModeHMAC,
		Description: "keyed hashing into the original shape, no vault",
	},
	"referential-integrity": {
		Name:        "referential-integrity",
		Mode:        transform.ModeHybrid,
		SharedSeed:  true,
		Description: "stable replacements across datasets via a shared seed",
	},
}

// ProfileByName resolves a profile preset. An empty name resolves to the
// default profile.
func ProfileByName(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	profile, ok := profiles[name]
	if !ok {
		return Profile{}, customValidation.WrapValidationError(
			validation.NewError("validation_profile", "unknown profile: "+name),
		)
	}
	return profile, nil
}

// Profiles lists every preset sorted by name.
func Profiles() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
