package api

import "io"

// FileEntry is one file reported by the listing endpoint.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type fileListResponse struct {
	Files []FileEntry `json:"files"`
}

// File is an upload body and the name the backend should store it under.
type File struct {
	Name string
	Body io.Reader
}

// UploadResponse covers both config and template uploads. Template uploads
// only report message and path.
type UploadResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ValidationResponse is returned by the config validation endpoint.
type ValidationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Host is one inventory device.
type Host struct {
	Name     string   `json:"name"`
	IP       string   `json:"ip"`
	Platform string   `json:"platform"`
	Groups   []string `json:"groups"`
}

type hostListResponse struct {
	Hosts []Host `json:"hosts"`
}

// InspectionRequest names the hosts, in selection order, and the template pair.
type InspectionRequest struct {
	Hosts       []string `json:"hosts"`
	CommandFile string   `json:"commandFile"`
	PromptFile  string   `json:"promptFile"`
}

// HostResult is the backend's per-host outcome.
type HostResult struct {
	Host      string `json:"host"`
	Status    string `json:"status"`
	RawConfig string `json:"raw_config"`
	Report    string `json:"report"`
	Error     string `json:"error"`
}

// InspectionResponse lists per-host outcomes in backend order.
type InspectionResponse struct {
	Status  string       `json:"status"`
	Results []HostResult `json:"results"`
	Message string       `json:"message"`
}

// StatusSuccess is the success marker used by inspection responses.
const StatusSuccess = "success"

type chatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply and an optional suggested command.
type ChatResponse struct {
	Response string  `json:"response"`
	Command  *string `json:"command"`
}

type executeRequest struct {
	Command string `json:"command"`
}

// ExecuteResponse carries the captured output of an executed command.
type ExecuteResponse struct {
	Output string `json:"output"`
}
