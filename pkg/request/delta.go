package request

import (
	"maps"
	"slices"
)

// Delta maps fingerprints to the responses a resolution consumed.
type Delta map[string]Retained

// Add records r under fingerprint fp, merging with an existing entry.
func (d Delta) Add(fp string, r Retained) {
	d[fp] = d[fp].merge(r)
}

// Merge adds every entry of o to d.
func (d Delta) Merge(o Delta) {
	for fp, r := range o {
		d.Add(fp, r)
	}
}

// Fingerprints returns the keys of d in sorted order.
func (d Delta) Fingerprints() []string {
	return slices.Sorted(maps.Keys(d))
}

// Bodies renders every entry to its snapshot body.
func (d Delta) Bodies() (map[string]string, error) {
	out := make(map[string]string, len(d))
	for fp, r := range d {
		body, err := r.Body()
		if err != nil {
			return nil, err
		}
		out[fp] = body
	}
	return out, nil
}
