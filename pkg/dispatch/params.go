package dispatch

import (
	"fmt"
	"net/url"
)

// Params are the request parameters of one call. Values are formatted with
// fmt; slices become repeated keys.
type Params map[string]any

// Values converts p to url.Values.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for key, val := range p {
		switch v := val.(type) {
		case nil:
			values.Set(key, "")
		case string:
			values.Set(key, v)
		case []string:
			for _, s := range v {
				values.Add(key, s)
			}
		case []any:
			for _, item := range v {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values
}

// Encode returns p in URL-encoded form, sorted by key.
func (p Params) Encode() string {
	return p.Values().Encode()
}
