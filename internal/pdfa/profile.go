// Package pdfa packages the serialized invoice XML and a rendered page
// body into a single-revision PDF/A-3 container carrying the metadata a
// conformance validator checks: typed embedded file with an explicit
// relationship, XMP conformance claims, and an ICC output intent.
package pdfa

import (
	"errors"
	"os"

	"github.com/jonaboe98/zugferd-api/internal/model"
)

// ColorProfile is the ICC output-intent resource. It is resolved once at
// process start and handed into the packer; it is never re-read per
// request.
type ColorProfile struct {
	// Name is the output condition identifier written into the container.
	Name string
	Data []byte
}

// DefaultProfileName identifies the sRGB output condition.
const DefaultProfileName = "sRGB IEC61966-2.1"

// LoadColorProfile reads the ICC profile from disk. An unreadable or
// empty profile is environment misconfiguration: conformance is
// unattainable without it.
func LoadColorProfile(path string) (*ColorProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewMissingResourceError("icc color profile", path, err)
	}
	if len(data) == 0 {
		return nil, model.NewMissingResourceError("icc color profile", path, errors.New("profile file is empty"))
	}
	return &ColorProfile{Name: DefaultProfileName, Data: data}, nil
}
