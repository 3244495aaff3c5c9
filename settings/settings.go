package settings

import (
	"errors"
	"fmt"
	"io"
	"strings"

	extctx "github.com/indexdata/crosslink/econtent/common"
	"gopkg.in/yaml.v3"
)

var ErrNoSettings = errors.New("no Axis 360 settings configured")

// VendorSettings identifies the library account at the vendor. A client reads it once
// and keeps it for the rest of the request.
type VendorSettings struct {
	ID               string `json:"id" yaml:"id"`
	LibraryID        string `json:"libraryId" yaml:"libraryId"`
	AccountID        string `json:"accountId" yaml:"accountId"`
	AccountKey       string `json:"accountKey" yaml:"accountKey"`
	ApiURL           string `json:"apiUrl" yaml:"apiUrl"`
	UserInterfaceURL string `json:"userInterfaceUrl" yaml:"userInterfaceUrl"`
}

func (s VendorSettings) Validate() error {
	var missing []string
	if s.LibraryID == "" {
		missing = append(missing, "libraryId")
	}
	if s.AccountID == "" {
		missing = append(missing, "accountId")
	}
	if s.AccountKey == "" {
		missing = append(missing, "accountKey")
	}
	if s.ApiURL == "" {
		missing = append(missing, "apiUrl")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Provider interface {
	GetSettings(ctx extctx.ExtendedContext) (VendorSettings, error)
}

type StaticProvider struct {
	Settings VendorSettings
}

func (p *StaticProvider) GetSettings(ctx extctx.ExtendedContext) (VendorSettings, error) {
	return p.Settings, nil
}

// RepoProvider serves the first stored settings record.
type RepoProvider struct {
	Repo SettingsRepo
}

func (p *RepoProvider) GetSettings(ctx extctx.ExtendedContext) (VendorSettings, error) {
	list, err := p.Repo.ListSettings(ctx)
	if err != nil {
		return VendorSettings{}, err
	}
	if len(list) == 0 {
		return VendorSettings{}, ErrNoSettings
	}
	return list[0], nil
}

func ReadYaml(r io.Reader) (VendorSettings, error) {
	var s VendorSettings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, s.Validate()
}
