package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/adamkadaban/netinspector-tui/internal/state"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observer.ObservedLogs) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	core, logs := observer.New(zapcore.DebugLevel)
	client := New(Options{BaseURL: srv.URL + "/", Timeout: 5 * time.Second, Logger: zap.New(core)})
	return client, logs
}

func TestNewLeavesInjectedClientUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"files":[]}`)
	}))
	t.Cleanup(srv.Close)

	shared := &http.Client{Timeout: time.Minute}
	client := New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second, HTTPClient: shared})

	require.Equal(t, time.Minute, shared.Timeout)
	require.Equal(t, 2*time.Second, client.http.Timeout)
	require.NotSame(t, shared, client.http)
	_, err := client.ListFiles(context.Background(), "config")
	require.NoError(t, err)
}

func TestListFilesSendsDirectoryAndHeaders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/files/list", r.URL.Path)
		require.Equal(t, "templates/commands", r.URL.Query().Get("directory"))
		require.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{"files":[{"name":"a.json","path":"templates/commands/a.json"}]}`)
	})

	files, err := client.ListFiles(context.Background(), "templates/commands")
	require.NoError(t, err)
	require.Equal(t, []FileEntry{{Name: "a.json", Path: "templates/commands/a.json"}}, files)
}

func TestUploadConfigSendsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload-config", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "hosts", r.FormValue("type"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		body, _ := io.ReadAll(file)
		require.Equal(t, "hosts.yaml", header.Filename)
		require.Equal(t, "r1: {}\n", string(body))
		_, _ = io.WriteString(w, `{"success":true,"path":"config/hosts.yaml"}`)
	})

	resp, err := client.UploadConfig(context.Background(), state.CategoryHosts, File{Name: "hosts.yaml", Body: strings.NewReader("r1: {}\n")})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "config/hosts.yaml", resp.Path)
}

func TestUploadTemplateRoutesByKind(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"ok","path":"x"}`)
	})

	ctx := context.Background()
	_, err := client.UploadTemplate(ctx, state.TemplateCommand, File{Name: "c.json", Body: strings.NewReader("{}")})
	require.NoError(t, err)
	_, err = client.UploadTemplate(ctx, state.TemplatePrompt, File{Name: "p.txt", Body: strings.NewReader("hi")})
	require.NoError(t, err)
	require.Equal(t, []string{"/api/upload/commands", "/api/upload/prompt"}, paths)
}

func TestStartInspectionEncodesRequest(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req InspectionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"r2", "r1"}, req.Hosts)
		require.Equal(t, "templates/commands/c.json", req.CommandFile)
		_, _ = io.WriteString(w, `{"status":"success","results":[{"host":"r2","status":"failed","error":"timeout"}]}`)
	})

	resp, err := client.StartInspection(context.Background(), InspectionRequest{
		Hosts:       []string{"r2", "r1"},
		CommandFile: "templates/commands/c.json",
		PromptFile:  "templates/prompts/p.txt",
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "timeout", resp.Results[0].Error)
}

func TestChatDecodesOptionalCommand(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["message"] == "show version" {
			_, _ = io.WriteString(w, `{"response":"Run it","command":"show version"}`)
			return
		}
		_, _ = io.WriteString(w, `{"response":"Hello","command":null}`)
	})

	ctx := context.Background()
	resp, err := client.Chat(ctx, "show version")
	require.NoError(t, err)
	require.NotNil(t, resp.Command)
	require.Equal(t, "show version", *resp.Command)

	resp, err = client.Chat(ctx, "hi")
	require.NoError(t, err)
	require.Nil(t, resp.Command)
	require.Equal(t, "Hello", resp.Response)
}

func TestRejectionMessagePreference(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "detail string", status: 400, body: `{"detail":"bad host","error":"x"}`, want: "bad host"},
		{name: "detail list", status: 422, body: `{"detail":[{"msg":"field required"},{"msg":"bad type"}]}`, want: "field required; bad type"},
		{name: "error", status: 500, body: `{"error":"boom","message":"m"}`, want: "boom"},
		{name: "message", status: 500, body: `{"message":"m"}`, want: "m"},
		{name: "status text", status: 502, body: `<html>`, want: "request failed: 502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.ValidateConfigs(context.Background())
			failure, ok := AsFailure(err)
			require.True(t, ok, "expected CallFailure, got %v", err)
			require.Equal(t, KindRejection, failure.Kind)
			require.Equal(t, tt.status, failure.Status)
			require.Equal(t, tt.want, failure.Message)
			require.Equal(t, 1, logs.FilterMessage("backend call failed").Len())
		})
	}
}

func TestTransportFailures(t *testing.T) {
	t.Run("refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()
		client := New(Options{BaseURL: base, Timeout: time.Second})
		_, err := client.ListHosts(context.Background())
		failure, ok := AsFailure(err)
		require.True(t, ok)
		require.Equal(t, KindTransport, failure.Kind)
		require.NotEmpty(t, failure.Message)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)
		client := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
		_, err := client.ListHosts(context.Background())
		failure, ok := AsFailure(err)
		require.True(t, ok)
		require.Equal(t, KindTransport, failure.Kind)
		require.Equal(t, "request timed out", failure.Message)
	})

	t.Run("bad json", func(t *testing.T) {
		client, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"hosts":`)
		})
		_, err := client.ListHosts(context.Background())
		failure, ok := AsFailure(err)
		require.True(t, ok)
		require.Equal(t, KindTransport, failure.Kind)
		require.Equal(t, 1, logs.Len())
	})
}

func TestSettingsRoundTrip(t *testing.T) {
	var saved map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"connection":{"retry_times":3},"langchain":{"verbose":true}}`)
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			_, _ = io.WriteString(w, `{"status":"ok"}`)
		}
	})

	ctx := context.Background()
	settings, err := client.GetSettings(ctx)
	require.NoError(t, err)
	conn := settings.GetFields()["connection"].GetStructValue()
	require.Equal(t, float64(3), conn.GetFields()["retry_times"].GetNumberValue())

	conn.GetFields()["retry_times"] = structpb.NewNumberValue(5)
	require.NoError(t, client.SaveSettings(ctx, settings))
	require.Equal(t, float64(5), saved["connection"].(map[string]any)["retry_times"])
}

func TestMessage(t *testing.T) {
	require.Equal(t, "", Message(nil))
	require.Equal(t, "bad", Message(Rejection("op", "  ", "bad")))
	require.Equal(t, "unexpected EOF", Message(io.ErrUnexpectedEOF))
}
