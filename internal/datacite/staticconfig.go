package datacite

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const DefaultLocale = "en"

// StaticConfig carries the DOI attributes that do not come from Mica. It is
// read from the "mica" section of the DOI configuration file.
type StaticConfig struct {
	Prefix              string        `mapstructure:"prefix"              validate:"required"`
	Suffix              string        `mapstructure:"suffix"              validate:"required"`
	Locale              string        `mapstructure:"locale"              validate:"required"`
	Language            string        `mapstructure:"language"`
	Version             string        `mapstructure:"version"`
	Publisher           string        `mapstructure:"publisher"           validate:"required"`
	ResourceTypeGeneral string        `mapstructure:"resourceTypeGeneral" validate:"required"`
	ResourceType        string        `mapstructure:"resourceType"        validate:"required"`
	Subjects            []Subject     `mapstructure:"subjects"            validate:"dive"`
	Creators            []Creator     `mapstructure:"creators"            validate:"required,min=1,dive"`
	Dates               []Date        `mapstructure:"dates"               validate:"dive"`
	GeoLocations        []GeoLocation `mapstructure:"geoLocations"`

	Contributors       []Contributor       `mapstructure:"contributors"       validate:"omitempty,dive"`
	Rights             []Right             `mapstructure:"rights"`
	Formats            []string            `mapstructure:"formats"`
	RelatedIdentifiers []RelatedIdentifier `mapstructure:"relatedIdentifiers" validate:"omitempty,dive"`
}

type staticConfigFile struct {
	Mica StaticConfig `mapstructure:"mica"`
}

// LoadStaticConfig reads a DOI configuration file. The format follows the
// file extension (json, yaml or toml).
func LoadStaticConfig(path string) (StaticConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("mica.locale", DefaultLocale)
	if err := v.ReadInConfig(); err != nil {
		return StaticConfig{}, fmt.Errorf("read doi config: %w", err)
	}

	var file staticConfigFile
	if err := v.UnmarshalExact(&file); err != nil {
		return StaticConfig{}, fmt.Errorf("decode doi config: %w", err)
	}
	if err := validator.New().Struct(&file.Mica); err != nil {
		return StaticConfig{}, fmt.Errorf("invalid doi config: %w", err)
	}
	return file.Mica, nil
}

// DOI is the prefix/suffix pair as DataCite addresses it.
func (c StaticConfig) DOI() string {
	return c.Prefix + "/" + c.Suffix
}
