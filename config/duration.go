package config

import "time"

// Duration is a time.Duration that knows how to marshal itself as a string
// like "5s" or "1h", so it can be used directly in YAML and TOML config
// files, in default tags, and in go-flags options.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalFlag and UnmarshalFlag make Duration usable as a go-flags option
// value.
func (d Duration) MarshalFlag() (string, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalFlag(value string) error {
	return d.UnmarshalText([]byte(value))
}
