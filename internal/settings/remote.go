package settings

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/inflight"
	"github.com/adamkadaban/netinspector-tui/internal/state"
)

const saveKey = "save"

// RemoteBackend is the subset of the gateway used for backend settings.
type RemoteBackend interface {
	GetSettings(ctx context.Context) (*structpb.Struct, error)
	SaveSettings(ctx context.Context, settings *structpb.Struct) error
}

// Remote edits the backend's settings object (connection, logging, AI and
// output directory sections). The object is opaque: whatever shape the
// backend returns is flattened into dot-separated leaf paths.
type Remote struct {
	backend RemoteBackend
	store   *state.Store
	guard   *inflight.Guard

	mu      sync.Mutex
	current *structpb.Struct
}

var _ controller.RemoteSettings = (*Remote)(nil)

// NewRemote returns an empty remote settings editor. Call Load to populate it.
func NewRemote(store *state.Store, backend RemoteBackend) *Remote {
	return &Remote{backend: backend, store: store, guard: inflight.New()}
}

// Load fetches the settings object, discarding unsaved edits. On failure the
// previous object is kept.
func (r *Remote) Load(ctx context.Context) error {
	settings, err := r.backend.GetSettings(ctx)
	if err != nil {
		r.store.Notify(state.NoticeError, "Failed to load settings")
		return fmt.Errorf("load settings: %w", err)
	}
	r.mu.Lock()
	r.current = settings
	r.mu.Unlock()
	r.store.Changed()
	return nil
}

// Loaded reports whether a settings object has been fetched.
func (r *Remote) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Fields lists every leaf sorted by path.
func (r *Remote) Fields() []controller.SettingField {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	var fields []controller.SettingField
	flatten("", r.current, &fields)
	slices.SortFunc(fields, func(a, b controller.SettingField) int {
		return strings.Compare(a.Path, b.Path)
	})
	return fields
}

func flatten(prefix string, s *structpb.Struct, out *[]controller.SettingField) {
	for key, value := range s.GetFields() {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested := value.GetStructValue(); nested != nil {
			flatten(path, nested, out)
			continue
		}
		*out = append(*out, controller.SettingField{Path: path, Value: render(value), Kind: kindOf(value)})
	}
}

func kindOf(v *structpb.Value) controller.SettingKind {
	switch v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return controller.SettingBool
	case *structpb.Value_NumberValue:
		return controller.SettingNumber
	default:
		return controller.SettingString
	}
}

func render(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_ListValue:
		parts := make([]string, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			parts = append(parts, render(item))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Set edits one leaf, coercing raw to the leaf's current type. Lists take
// comma-separated values.
func (r *Remote) Set(path, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return controller.ErrInvalidState
	}

	keys := strings.Split(path, ".")
	parent := r.current
	for _, key := range keys[:len(keys)-1] {
		parent = parent.GetFields()[key].GetStructValue()
		if parent == nil {
			return controller.Invalid(fmt.Sprintf("unknown setting %q", path))
		}
	}
	leafKey := keys[len(keys)-1]
	leaf, ok := parent.GetFields()[leafKey]
	if !ok || leaf.GetStructValue() != nil {
		return controller.Invalid(fmt.Sprintf("unknown setting %q", path))
	}

	value, err := coerce(leaf, raw)
	if err != nil {
		return controller.Invalid(fmt.Sprintf("%s: %v", path, err))
	}
	parent.Fields[leafKey] = value
	return nil
}

func coerce(current *structpb.Value, raw string) (*structpb.Value, error) {
	raw = strings.TrimSpace(raw)
	list := current.GetListValue()
	if list == nil {
		return coerceScalar(current, raw)
	}
	// Elements follow the type of the first existing element; an empty list
	// takes strings.
	var like *structpb.Value
	if values := list.GetValues(); len(values) > 0 {
		like = values[0]
	}
	items := make([]*structpb.Value, 0)
	for i, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		item, err := coerceScalar(like, part)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items}), nil
}

func coerceScalar(like *structpb.Value, raw string) (*structpb.Value, error) {
	switch like.GetKind().(type) {
	case *structpb.Value_BoolValue:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected true or false")
		}
		return structpb.NewBoolValue(b), nil
	case *structpb.Value_NumberValue:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number")
		}
		return structpb.NewNumberValue(n), nil
	default:
		return structpb.NewStringValue(raw), nil
	}
}

// Save posts the whole settings object and reloads it, so the view reflects
// what the backend actually stored.
func (r *Remote) Save(ctx context.Context) error {
	release, ok := r.guard.Acquire(saveKey)
	if !ok {
		return controller.ErrBusy
	}
	defer release()

	r.mu.Lock()
	if r.current == nil {
		r.mu.Unlock()
		return controller.ErrInvalidState
	}
	payload := proto.Clone(r.current).(*structpb.Struct)
	r.mu.Unlock()

	if err := r.backend.SaveSettings(ctx, payload); err != nil {
		r.store.Notify(state.NoticeError, "Failed to save settings")
		return fmt.Errorf("save settings: %w", err)
	}
	r.store.Notify(state.NoticeSuccess, "Settings saved successfully")
	return r.Load(ctx)
}
