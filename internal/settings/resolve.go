package settings

import "strconv"

// Source names the layer a resolved value came from.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceChannel  Source = "channel"
	SourceUser     Source = "user"
	SourceSystem   Source = "system"
)

// Resolve picks the first non-empty value in the order
// explicit > channel default > user default > system default.
func Resolve(key Key, explicit, channel, user Values) (string, Source) {
	layers := []struct {
		source Source
		values Values
	}{
		{SourceExplicit, explicit},
		{SourceChannel, channel},
		{SourceUser, user},
	}
	for _, l := range layers {
		if v := l.values[key]; v != "" {
			return v, l.source
		}
	}
	return systemDefaults[key], SourceSystem
}

// Resolved is the effective value of every key.
type Resolved struct {
	values  Values
	sources map[Key]Source
}

func ResolveAll(explicit, channel, user Values) Resolved {
	r := Resolved{
		values:  make(Values, len(Keys)),
		sources: make(map[Key]Source, len(Keys)),
	}
	for _, k := range Keys {
		r.values[k], r.sources[k] = Resolve(k, explicit, channel, user)
	}
	return r
}

func (r Resolved) Get(key Key) string {
	return r.values[key]
}

func (r Resolved) Source(key Key) Source {
	return r.sources[key]
}

// Int parses the value as an integer, falling back to the system default
// when the stored value is malformed.
func (r Resolved) Int(key Key) int {
	if n, err := strconv.Atoi(r.values[key]); err == nil {
		return n
	}
	n, _ := strconv.Atoi(systemDefaults[key])
	return n
}
