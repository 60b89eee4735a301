package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/adamkadaban/netinspector-tui/internal/logging"
	"github.com/adamkadaban/netinspector-tui/internal/state"
)

const (
	// DefaultBaseURL is used when no base address is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout is shared by every call; AI and inspection calls are slow.
	DefaultTimeout = 120 * time.Second

	maxResponseBytes = 16 << 20
)

// Options configure the gateway.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Client wraps every backend call. It is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// New builds a gateway client.
func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var httpClient *http.Client
	if opts.HTTPClient != nil {
		injected := *opts.HTTPClient
		httpClient = &injected
	} else {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	httpClient.Timeout = timeout
	return &Client{base: base, http: httpClient, log: logging.OrNop(opts.Logger)}
}

// BaseURL reports the configured backend address.
func (c *Client) BaseURL() string { return c.base }

// ListFiles lists the files in a backend directory.
func (c *Client) ListFiles(ctx context.Context, directory string) ([]FileEntry, error) {
	var resp fileListResponse
	path := "/api/files/list?directory=" + url.QueryEscape(directory)
	if err := c.doJSON(ctx, "list files", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// UploadConfig uploads an inventory file for a configuration category.
func (c *Client) UploadConfig(ctx context.Context, category state.Category, file File) (UploadResponse, error) {
	var resp UploadResponse
	fields := map[string]string{"type": string(category)}
	if err := c.doUpload(ctx, "upload config", "/api/upload-config", file, fields, &resp); err != nil {
		return UploadResponse{}, err
	}
	return resp, nil
}

// ValidateConfigs validates whatever the backend currently has selected.
func (c *Client) ValidateConfigs(ctx context.Context) (ValidationResponse, error) {
	var resp ValidationResponse
	if err := c.doJSON(ctx, "validate configs", http.MethodPost, "/api/validate-configs", nil, &resp); err != nil {
		return ValidationResponse{}, err
	}
	return resp, nil
}

// ListHosts lists inventory devices.
func (c *Client) ListHosts(ctx context.Context) ([]Host, error) {
	var resp hostListResponse
	if err := c.doJSON(ctx, "list hosts", http.MethodGet, "/api/hosts/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Hosts, nil
}

// StartInspection runs an inspection and returns per-host outcomes.
func (c *Client) StartInspection(ctx context.Context, req InspectionRequest) (InspectionResponse, error) {
	var resp InspectionResponse
	if err := c.doJSON(ctx, "start inspection", http.MethodPost, "/api/inspection/start", req, &resp); err != nil {
		return InspectionResponse{}, err
	}
	return resp, nil
}

// UploadTemplate uploads a command or prompt template.
func (c *Client) UploadTemplate(ctx context.Context, kind state.TemplateKind, file File) (UploadResponse, error) {
	path := "/api/upload/commands"
	if kind == state.TemplatePrompt {
		path = "/api/upload/prompt"
	}
	var resp UploadResponse
	if err := c.doUpload(ctx, "upload template", path, file, nil, &resp); err != nil {
		return UploadResponse{}, err
	}
	return resp, nil
}

// GetSettings reads the backend settings object.
func (c *Client) GetSettings(ctx context.Context) (*structpb.Struct, error) {
	body, err := c.send(ctx, "get settings", http.MethodGet, "/api/settings", nil, "")
	if err != nil {
		return nil, err
	}
	settings := &structpb.Struct{}
	if len(bytes.TrimSpace(body)) == 0 {
		return settings, nil
	}
	if err := protojson.Unmarshal(body, settings); err != nil {
		return nil, c.decodeFailure("get settings", err)
	}
	return settings, nil
}

// SaveSettings writes the full backend settings object.
func (c *Client) SaveSettings(ctx context.Context, settings *structpb.Struct) error {
	payload, err := protojson.Marshal(settings)
	if err != nil {
		return &CallFailure{Op: "save settings", Kind: KindTransport, Message: "encode settings: " + err.Error()}
	}
	_, err = c.send(ctx, "save settings", http.MethodPost, "/api/settings", bytes.NewReader(payload), "application/json")
	return err
}

// Chat sends one message to the assistant. No history is sent.
func (c *Client) Chat(ctx context.Context, message string) (ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON(ctx, "chat", http.MethodPost, "/api/chat", chatRequest{Message: message}, &resp); err != nil {
		return ChatResponse{}, err
	}
	return resp, nil
}

// ExecuteCommand runs a confirmed command on the backend.
func (c *Client) ExecuteCommand(ctx context.Context, command string) (ExecuteResponse, error) {
	var resp ExecuteResponse
	if err := c.doJSON(ctx, "execute command", http.MethodPost, "/api/execute-command", executeRequest{Command: command}, &resp); err != nil {
		return ExecuteResponse{}, err
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &CallFailure{Op: op, Kind: KindTransport, Message: "encode request: " + err.Error()}
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	data, err := c.send(ctx, op, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.decode(op, data, out)
}

func (c *Client) doUpload(ctx context.Context, op, path string, file File, fields map[string]string, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return &CallFailure{Op: op, Kind: KindTransport, Message: "build upload: " + err.Error()}
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return &CallFailure{Op: op, Kind: KindTransport, Message: "read upload: " + err.Error()}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return &CallFailure{Op: op, Kind: KindTransport, Message: "build upload: " + err.Error()}
		}
	}
	if err := writer.Close(); err != nil {
		return &CallFailure{Op: op, Kind: KindTransport, Message: "build upload: " + err.Error()}
	}
	data, err := c.send(ctx, op, http.MethodPost, path, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	return c.decode(op, data, out)
}

// send performs the request and normalizes every failure into a CallFailure.
func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, c.fail(op, method, path, requestID, &CallFailure{Op: op, Kind: KindTransport, Message: err.Error()}, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(op, method, path, requestID, &CallFailure{Op: op, Kind: KindTransport, Message: transportMessage(err)}, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.fail(op, method, path, requestID, &CallFailure{Op: op, Kind: KindTransport, Status: resp.StatusCode, Message: transportMessage(err)}, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := serverMessage(data)
		if message == "" {
			message = statusMessage(resp.StatusCode)
		}
		failure := &CallFailure{Op: op, Kind: KindRejection, Status: resp.StatusCode, Message: message}
		return nil, c.fail(op, method, path, requestID, failure, nil)
	}
	return data, nil
}

func (c *Client) decode(op string, data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.decodeFailure(op, err)
	}
	return nil
}

func (c *Client) decodeFailure(op string, cause error) error {
	failure := &CallFailure{Op: op, Kind: KindTransport, Message: "invalid response from server"}
	return c.fail(op, "", "", "", failure, cause)
}

// fail logs a failure to the diagnostic channel and returns it. Logging must
// not affect the caller, so any panic from a misconfigured core is swallowed.
func (c *Client) fail(op, method, path, requestID string, failure *CallFailure, cause error) error {
	func() {
		defer func() { _ = recover() }()
		fields := []zap.Field{
			zap.String("op", op),
			zap.String("kind", string(failure.Kind)),
			zap.String("message", failure.Message),
		}
		if method != "" {
			fields = append(fields, zap.String("method", method), zap.String("path", path))
		}
		if requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if failure.Status != 0 {
			fields = append(fields, zap.Int("status", failure.Status))
		}
		if cause != nil {
			fields = append(fields, zap.NamedError("cause", cause))
		}
		c.log.Warn("backend call failed", fields...)
	}()
	return failure
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return fmt.Sprintf("%s: %v", strings.ToLower(urlErr.Op), urlErr.Err)
	}
	return err.Error()
}
