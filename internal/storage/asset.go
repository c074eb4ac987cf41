package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

// Ids appear in gate strings and filenames, so keep them to a safe set.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidatingSpec is anything loadable as an asset. Validation runs at load
// time so malformed content is rejected before any turn can see it.
type ValidatingSpec interface {
	Validate() error
}

// Asset is the versioned envelope every stored record lives in.
type Asset[T ValidatingSpec] struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       T      `json:"spec"`
}

func (a *Asset[T]) Id() string {
	return a.Identifier
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	} else if !identifierPattern.MatchString(a.Identifier) {
		el.Add(fmt.Errorf("id %q must be alphanumeric with - or _", a.Identifier))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
