// Package validation checks configuration structs against their validate
// tags and reports failures as INVALID_REQUEST errors naming the offending
// config keys.
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
//	}
//	if err := validation.Struct(&cfg); err != nil { ... }
package validation
