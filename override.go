package rotlog

import (
	"reflect"
	"strconv"
)

// ApplyConfigString applies "key=value" overrides to a copy of the current
// configuration and then applies the result
//
// Example:
//
//	err := logger.ApplyConfigString(
//	    "file_pattern=/var/log/app/{date: yyyy-MM-dd}_{count}.log",
//	    "policies=daily: 03:00, size: 50MB",
//	    "level=debug",
//	)
func (l *Logger) ApplyConfigString(overrides ...string) error {
	cfg := l.getConfig().Clone()
	if err := cfg.Override(overrides...); err != nil {
		return err
	}
	return l.ApplyConfig(cfg)
}

// Override applies "key=value" strings to c. All malformed entries are
// reported together; valid ones are applied regardless.
func (c *Config) Override(overrides ...string) error {
	var errs []error
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := applyConfigField(c, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}
	return nil
}

// configFields maps toml keys to struct field indices
var configFields = func() map[string]int {
	t := reflect.TypeOf(Config{})
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("toml"); tag != "" {
			m[tag] = i
		}
	}
	return m
}()

// applyConfigField parses value according to the type of the field named key
func applyConfigField(cfg *Config, key, value string) error {
	// Level accepts names as well as numbers
	if key == "level" {
		levelVal, err := Level(value)
		if err != nil {
			return fmtErrorf("invalid level value '%s': %w", value, err)
		}
		cfg.Level = levelVal
		return nil
	}

	index, ok := configFields[key]
	if !ok {
		return fmtErrorf("unknown configuration key '%s'", key)
	}
	field := reflect.ValueOf(cfg).Elem().Field(index)

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int64:
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
		}
		field.SetInt(intVal)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
		}
		field.SetBool(boolVal)
	default:
		return fmtErrorf("unsupported type for configuration key '%s'", key)
	}
	return nil
}
