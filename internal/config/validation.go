package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags first, then rules spanning several sections.
func Validate(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *AppConfig) error {
	if cfg.MetadataBackend == "postgres" {
		if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database: host, user and name are required for the postgres backend")
		}
	}

	switch cfg.StorageBackend {
	case "minio":
		if cfg.MinIO.Endpoint == "" || cfg.MinIO.Bucket == "" {
			return fmt.Errorf("minio: endpoint and bucket are required for the minio backend")
		}
		if cfg.MinIO.AccessKey == "" || cfg.MinIO.SecretKey == "" {
			return fmt.Errorf("minio: access and secret keys are required for the minio backend")
		}
	case "local":
		if cfg.Local.Dir == "" {
			return fmt.Errorf("local: dir is required for the local backend")
		}
	}

	if int64(cfg.Quota.MaxUploadBytes) > cfg.Quota.LimitBytes {
		return fmt.Errorf("quota: max upload bytes (%d) exceeds the quota limit (%d)",
			cfg.Quota.MaxUploadBytes, cfg.Quota.LimitBytes)
	}

	if cfg.Classifier.Enabled && cfg.Classifier.APIKey == "" {
		return fmt.Errorf("classifier: api key is required when classification is enabled")
	}

	return nil
}

// formatValidationError reports the first failing field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
