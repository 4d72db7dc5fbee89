package history

import (
	"sync"

	"github.com/goliatone/go-masker"
)

// FilterValueField is the details key carrying user-entered filter text.
const FilterValueField = "filter_value"

var registerFilterMask sync.Once

// DefaultMasker returns masker.Default with FilterValueField registered.
func DefaultMasker() *masker.Masker {
	registerFilterMask.Do(func() {
		if masker.Default != nil {
			masker.Default.RegisterMaskField(FilterValueField, "filled4")
		}
	})
	return masker.Default
}

// redact copies details and masks the filter value. When masking fails the
// value is dropped so it is never stored in clear.
func redact(mask *masker.Masker, details map[string]any) map[string]any {
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = v
	}
	if _, ok := out[FilterValueField]; !ok {
		return out
	}
	if mask != nil {
		if masked, err := mask.Mask(out); err == nil {
			if m, ok := masked.(map[string]any); ok {
				return m
			}
		}
	}
	delete(out, FilterValueField)
	return out
}
