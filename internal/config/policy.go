package config

import (
	"path/filepath"

	"github.com/Rorical/filedrop/internal/settings"
	"github.com/Rorical/filedrop/internal/upload"
)

// Upload policy keys, looked up through a settings.Provider. In the process
// environment they carry EnvPrefix.
const (
	KeyAllowFileUpload  = "ALLOW_FILE_UPLOAD"
	KeyFileUploadPath   = "FILE_UPLOAD_PATH"
	KeyUploadRetryTimes = "UPLOAD_RETRY_TIMES"
	KeyAllowMimeFilter  = "ALLOW_UPLOADING_MIME_FILTER"
	KeyDenyMimeFilter   = "DENY_UPLOADING_MIME_FILTER"

	FilterSeparator = ';'
)

// SettingsSource returns the source the upload policy is read from: the
// process environment first, then the optional settings file.
func SettingsSource(cfg UploadConfig) (settings.Source, error) {
	chain := settings.Chain{settings.Env{Prefix: EnvPrefix}}
	if cfg.SettingsFile != "" {
		file, err := settings.File(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, file)
	}
	return chain, nil
}

// LoadPolicy reads the upload policy. Any returned error is a *settings.Error.
func LoadPolicy(p *settings.Provider) (upload.Policy, error) {
	enabled, err := p.Bool(KeyAllowFileUpload)
	if err != nil {
		return upload.Policy{}, err
	}
	retry, err := p.Int(KeyUploadRetryTimes)
	if err != nil {
		return upload.Policy{}, err
	}

	dir, _ := p.OptionalString(KeyFileUploadPath)
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}

	return upload.Policy{
		Enabled:     enabled,
		Directory:   dir,
		RetryBudget: retry,
		Allow:       p.OptionalList(KeyAllowMimeFilter, FilterSeparator),
		Deny:        p.OptionalList(KeyDenyMimeFilter, FilterSeparator),
	}, nil
}
