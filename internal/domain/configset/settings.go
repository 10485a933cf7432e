package configset

import "sort"

// Settings maps setting keys to typed values. A nil Settings behaves like an
// empty one for reads.
type Settings map[string]Value

// Get returns the value for key and whether it is present.
func (s Settings) Get(key string) (Value, bool) {
	v, ok := s[key]
	return v, ok
}

// Keys returns the setting keys in sorted order for deterministic iteration.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of the settings map. Values are immutable so a
// shallow copy of the map suffices; list payloads are copied on access.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge combines settings layers with later layers taking precedence per
// key. Typical layering: schema defaults, then global settings, then
// workspace settings, then call-site overrides. Nil layers are skipped.
// The result is always a non-nil map.
func Merge(layers ...Settings) Settings {
	merged := make(Settings)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}
