package controller

import (
	"context"

	"github.com/adamkadaban/netinspector-tui/internal/state"
)

// ConfigManager drives configuration file discovery, selection and validation.
type ConfigManager interface {
	Snapshot() state.ConfigSnapshot
	Refresh(ctx context.Context) error
	Select(category state.Category, path string)
	Upload(ctx context.Context, category state.Category, localPath string) error
	Ready() bool
	Validate(ctx context.Context) error
}

// InspectionManager selects devices and templates and dispatches inspections.
type InspectionManager interface {
	Snapshot() state.InspectionSnapshot
	Reload(ctx context.Context) error
	ToggleHost(name string)
	SetCommandTemplate(path string)
	SetPromptTemplate(path string)
	Start(ctx context.Context) error
}

// TemplateManager lists and uploads command and prompt templates.
type TemplateManager interface {
	Snapshot() state.TemplateSnapshot
	Refresh(ctx context.Context) error
	Upload(ctx context.Context, kind state.TemplateKind, localPath string) error
}

// CommandGate runs the chat-to-command confirmation loop.
type CommandGate interface {
	Snapshot() state.ChatSnapshot
	Send(ctx context.Context, text string) error
	Confirm(ctx context.Context) error
	Cancel() error
}

// SettingsManager persists local console preferences.
type SettingsManager interface {
	SetTheme(name string) (string, error)
	SetScreening(enabled bool, ruleDir string) (bool, error)
}

// RemoteSettings edits the backend's settings object.
type RemoteSettings interface {
	Fields() []SettingField
	Load(ctx context.Context) error
	Set(path, raw string) error
	Save(ctx context.Context) error
}

// SettingField is one editable leaf of the backend settings object.
type SettingField struct {
	Path  string
	Value string
	Kind  SettingKind
}

type SettingKind string

const (
	SettingString SettingKind = "string"
	SettingNumber SettingKind = "number"
	SettingBool   SettingKind = "bool"
)
