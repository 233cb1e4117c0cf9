package slicer

import "regexp"

var (
	externalImageRe = regexp.MustCompile(`^(ftp|http|https):\/\/[^ "]+$`)
	inlineImageRe   = regexp.MustCompile(`^data:image`)
)

// ValidateImage returns ref when it is an absolute ftp/http/https URL or an
// inline data:image value, and "" otherwise.
func ValidateImage(ref string) string {
	if externalImageRe.MatchString(ref) || inlineImageRe.MatchString(ref) {
		return ref
	}
	return ""
}

// IsExternalImage reports whether ref is an absolute ftp/http/https URL.
func IsExternalImage(ref string) bool {
	return externalImageRe.MatchString(ref)
}

// ImageTracker remembers whether an external image has been reported for
// the lifetime of one slicer instance.
type ImageTracker struct {
	reported bool
}

// Observe reports true exactly once: the first time an external image is seen.
func (t *ImageTracker) Observe(items []*Item) bool {
	if t.reported {
		return false
	}
	for _, it := range items {
		if IsExternalImage(it.ImageRef) {
			t.reported = true
			return true
		}
	}
	return false
}

// Reported reports whether the event already fired.
func (t *ImageTracker) Reported() bool {
	return t.reported
}
