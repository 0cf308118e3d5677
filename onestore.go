// Package onestore is the top-level entry point of the decoder: Parse
// sniffs a OneNote file's outer framing and dispatches to whichever of
// the legacy revision-store (§4.7) or FSSHTTPB packaged (§4.8) object
// assemblers applies, unifying both into the same onestore.OneStore
// model (§4.10 "format dispatch").
//
// This package's import path is the module path itself
// (github.com/runbark/onestore), distinct from the domain-types package
// at github.com/runbark/onestore/onestore: the domain types are shared
// by both assemblers, so the dispatcher that imports all of
// legacyobject, fsshttpbobject, and onestore together has to live above
// all three to avoid a dependency cycle.
package onestore

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/fsshttpbobject"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/legacyobject"
	"github.com/runbark/onestore/onestore"
	"github.com/runbark/onestore/packaging"
	"github.com/runbark/onestore/reader"
)

// Parse sniffs data's outer framing and returns the assembled OneStore.
// A legacy file_format GUID routes through legacyfile.ParseStore +
// legacyobject.Parse; a package-store file_format GUID routes through
// packaging.Parse + fsshttpbobject.Parse. A legacy header whose
// transaction log is immediately followed by an embedded FSSHTTPB
// packaging (the modern OneDrive download shape) is detected by
// DetectEmbedded and parsed through the packaging path instead.
func Parse(data []byte) (*onestore.OneStore, error) {
	if offset, ok := packaging.DetectEmbedded(data); ok {
		logrus.Debugf("onestore: embedded FSSHTTPB packaging detected at offset %d", offset)
		pkg, err := packaging.Parse(reader.New(data[offset:]))
		if err != nil {
			return nil, err
		}
		return fsshttpbobject.Parse(pkg)
	}

	r := reader.New(data)
	pkg, err := packaging.Parse(r)
	if err == nil {
		return fsshttpbobject.Parse(pkg)
	}

	var pe *errs.Error
	if !errors.As(err, &pe) || pe.Kind != errs.NotFssHttpBData {
		return nil, err
	}

	store, err := legacyfile.ParseStore(reader.New(data))
	if err != nil {
		return nil, err
	}
	return legacyobject.Parse(store)
}
