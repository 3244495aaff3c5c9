package editor

import (
	"errors"

	"github.com/google/uuid"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/settings"
	"github.com/jackc/pgx/v5"
)

var settingsStructure = ObjectStructure{
	{Property: "id", Type: TypeLabel, Label: "Id", Description: "The unique id"},
	{Property: "apiUrl", Type: TypeURL, Label: "url", Description: "The URL to the API", Required: true, MaxLength: 255},
	{Property: "userInterfaceUrl", Type: TypeURL, Label: "User Interface url", Description: "The URL where the Patron can access the catalog", MaxLength: 255},
	{Property: "libraryId", Type: TypeText, Label: "Library Prefix", Description: "The library prefix for the account", Required: true, MaxLength: 50},
	{Property: "accountId", Type: TypeText, Label: "Vendor Username", Description: "The vendor username provided by Axis 360", Required: true, MaxLength: 50},
	{Property: "accountKey", Type: TypeStoredPassword, Label: "Vendor Password", Description: "The vendor password provided by Axis 360", Required: true, MaxLength: 50},
}

const PermissionAdministerAxis360 = "Administer Axis 360"

// SettingsEditor edits the vendor account. Only one account may be configured.
type SettingsEditor struct {
	Repo settings.SettingsRepo
}

func NewSettingsEditor(repo settings.SettingsRepo) *SettingsEditor {
	return &SettingsEditor{Repo: repo}
}

func (e *SettingsEditor) ToolName() string {
	return "Axis360Settings"
}

func (e *SettingsEditor) PageTitle() string {
	return "Axis 360 Settings"
}

func (e *SettingsEditor) Instructions() string {
	return "/Admin/HelpManual?page=Axis-360"
}

func (e *SettingsEditor) Permission() string {
	return PermissionAdministerAxis360
}

func (e *SettingsEditor) ObjectStructure() ObjectStructure {
	return settingsStructure
}

func (e *SettingsEditor) GetAllObjects(ctx extctx.ExtendedContext) ([]settings.VendorSettings, error) {
	return e.Repo.ListSettings(ctx)
}

func (e *SettingsEditor) GetObject(ctx extctx.ExtendedContext, id string) (settings.VendorSettings, error) {
	s, err := e.Repo.GetSettingsById(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, ErrNotFound
	}
	return s, err
}

func (e *SettingsEditor) SaveObject(ctx extctx.ExtendedContext, obj settings.VendorSettings) (settings.VendorSettings, error) {
	var saved settings.VendorSettings
	err := e.Repo.WithTxFunc(ctx, func(repo settings.SettingsRepo) error {
		if obj.ID == "" {
			n, err := repo.CountSettings(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrCannotAddNew
			}
			obj.ID = uuid.NewString()
		} else if _, err := repo.GetSettingsById(ctx, obj.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		var err error
		saved, err = repo.SaveSettings(ctx, obj)
		return err
	})
	return saved, err
}

func (e *SettingsEditor) DeleteObject(ctx extctx.ExtendedContext, id string) error {
	err := e.Repo.DeleteSettings(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (e *SettingsEditor) CanAddNew(ctx extctx.ExtendedContext) (bool, error) {
	n, err := e.Repo.CountSettings(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
