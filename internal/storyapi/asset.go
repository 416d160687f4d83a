package storyapi

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Asset is a registry record kept in raw form. The registry has changed its
// field names between API versions, so fields are read by path on demand.
type Asset map[string]json.RawMessage

// Get reads a dotted path ("nftMetadata.name") from the asset.
func (a Asset) Get(path string) gjson.Result {
	first, rest, _ := strings.Cut(path, ".")
	raw, ok := a[first]
	if !ok {
		return gjson.Result{}
	}
	if rest == "" {
		return gjson.ParseBytes(raw)
	}
	return gjson.GetBytes(raw, rest)
}

// String returns the first path holding a non-empty string or number.
func (a Asset) String(paths ...string) string {
	for _, p := range paths {
		r := a.Get(p)
		switch r.Type {
		case gjson.String:
			if r.Str != "" {
				return r.Str
			}
		case gjson.Number:
			return r.Raw
		}
	}
	return ""
}

// Has reports whether the field holds a truthy value: present and not null,
// false, zero or an empty string.
func (a Asset) Has(field string) bool {
	return Truthy(a.Get(field))
}

// Clone returns a shallow copy; the raw values are never mutated in place.
func (a Asset) Clone() Asset {
	out := make(Asset, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ParentsCount is the number of parent IPs; anything missing or non-numeric counts as 0.
func (a Asset) ParentsCount() float64 {
	r := a.Get("parentsCount")
	if !Truthy(r) {
		return 0
	}
	return r.Float()
}

func Truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return true
	}
	return false
}
