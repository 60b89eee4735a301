package state

import "time"

// ViewKind identifies a top-level view inside the TUI router.
type ViewKind string

const (
	ViewConfiguration ViewKind = "configuration"
	ViewInspector     ViewKind = "inspector"
	ViewTemplates     ViewKind = "templates"
	ViewAssistant     ViewKind = "assistant"
	ViewSettings      ViewKind = "settings"
)

// DefaultViewOrder drives the tab navigation order across the application.
var DefaultViewOrder = []ViewKind{
	ViewConfiguration,
	ViewInspector,
	ViewTemplates,
	ViewAssistant,
	ViewSettings,
}

// NoticeLevel classifies a transient user-facing notification.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is the most recent notification shown in the footer.
type Notice struct {
	Level NoticeLevel
	Text  string
	At    time.Time
}

// Severity tags a log line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// LogEntry is one line of an append-only log stream. Timestamp is capture time.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	Severity  Severity
}

// Category is one of the configuration file classes.
type Category string

const (
	CategoryHosts    Category = "hosts"
	CategoryGroups   Category = "groups"
	CategoryDefaults Category = "defaults"
)

// Categories lists every configuration category in display order.
var Categories = []Category{CategoryHosts, CategoryGroups, CategoryDefaults}

// ExistingFile is a file reported by the backend. Identity is Path.
type ExistingFile struct {
	Name string
	Path string
}

// CategoryState is the client-side view of one configuration category.
type CategoryState struct {
	Files         []ExistingFile
	Selected      string
	PendingUpload string
	Uploading     bool
}

// Ready reports whether the category has an uploaded or selected file.
func (c CategoryState) Ready() bool {
	return c.PendingUpload != "" || c.Selected != ""
}

// ValidationOutcome is the result kind of a validation call.
type ValidationOutcome string

const (
	ValidationSuccess ValidationOutcome = "success"
	ValidationError   ValidationOutcome = "error"
)

// ValidationResult is overwritten by each validation call.
type ValidationResult struct {
	Outcome ValidationOutcome
	Message string
}

// ConfigSnapshot is a copy of the configuration manager's state.
type ConfigSnapshot struct {
	Categories map[Category]CategoryState
	Validation *ValidationResult
	Refreshing bool
	Validating bool
}

// Device is an inventory entry. Identity is Name.
type Device struct {
	Name     string
	IP       string
	Platform string
	Groups   []string
}

// TemplateKind separates the two template namespaces.
type TemplateKind string

const (
	TemplateCommand TemplateKind = "command"
	TemplatePrompt  TemplateKind = "prompt"
)

// TemplateFile is a command or prompt template known to the backend.
type TemplateFile struct {
	Name string
	Path string
}

// TemplateSnapshot is a copy of the template manager's state.
type TemplateSnapshot struct {
	Commands  []TemplateFile
	Prompts   []TemplateFile
	Uploading map[TemplateKind]bool
}

// InspectionSnapshot is a copy of the inspection dispatcher's state.
type InspectionSnapshot struct {
	Devices         []Device
	SelectedHosts   []string
	CommandTemplate string
	PromptTemplate  string
	Running         bool
	RunID           string
	Logs            []LogEntry
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one transcript entry.
type ChatMessage struct {
	Role    Role
	Content string
}

// GateState enumerates the command gate's states.
type GateState string

const (
	GateIdle                 GateState = "idle"
	GateAwaitingReply        GateState = "awaiting-reply"
	GateAwaitingConfirmation GateState = "awaiting-confirmation"
)

// ChatSnapshot is a copy of the command gate's state.
type ChatSnapshot struct {
	State          GateState
	Messages       []ChatMessage
	PendingCommand string
	Executing      bool
	Terminal       []LogEntry
}

// Settings holds local console preferences.
type Settings struct {
	Theme            string
	ScreeningEnabled bool
	ScreeningRuleDir string
}

// Snapshot is a threadsafe copy of the shell-level state.
type Snapshot struct {
	ActiveView ViewKind
	Notice     Notice
	Settings   Settings
}
