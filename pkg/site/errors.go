package site

import "errors"

var (
	// ErrUnknownBrand is returned for a brand id absent from the manifest.
	ErrUnknownBrand = errors.New("unknown brand")
	// ErrNotFound is returned when a product or project slug does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownFacet is returned when facet options are requested for an unregistered key.
	ErrUnknownFacet = errors.New("unknown facet")
	// ErrNotLoaded is returned by queries issued before the first successful Load.
	ErrNotLoaded = errors.New("site not loaded")
)
