//go:build linux

package ime

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"

	"kanakey/internal/logging"
	"kanakey/internal/memhost"
	"kanakey/internal/settings"
)

// IBus D-Bus constants
const (
	IBusFactoryPath      = "/org/freedesktop/IBus/Factory"
	IBusFactoryInterface = "org.freedesktop.IBus.Factory"
	IBusEngineInterface  = "org.freedesktop.IBus.Engine"
	IBusServiceInterface = "org.freedesktop.IBus.Service"
	KanakeyBusName       = "org.freedesktop.IBus.Kanakey"
)

// signalEmitter is the part of *dbus.Conn an engine needs.
type signalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// ServerOptions configures the IBus server.
type ServerOptions struct {
	// EngineName is the engine name registered in the component file.
	EngineName string

	// Settings is shared by every engine instance so a configuration
	// reload reaches all input contexts.
	Settings settings.Provider

	Logger  *logging.Logger
	Journal Recorder
}

// Server owns the D-Bus connection and the engine factory.
type Server struct {
	opts   ServerOptions
	logger *logging.Logger
	conn   *dbus.Conn

	mu      sync.Mutex
	nextID  uint32
	engines map[dbus.ObjectPath]*IBusEngine
}

// NewServer creates an unstarted server.
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.EngineName == "" {
		opts.EngineName = "kanakey"
	}
	return &Server{
		opts:    opts,
		logger:  opts.Logger.WithComponent("ibus"),
		engines: make(map[dbus.ObjectPath]*IBusEngine),
	}
}

// Start connects to the IBus bus, claims the bus name and exports the
// factory. IBUS_ADDRESS selects the bus; otherwise the session bus is used.
func (s *Server) Start() error {
	var err error
	if addr := os.Getenv("IBUS_ADDRESS"); addr != "" {
		s.conn, err = dbus.Connect(addr)
	} else {
		s.conn, err = dbus.SessionBus()
	}
	if err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}

	reply, err := s.conn.RequestName(KanakeyBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.conn.Close()
		return errors.New("bus name already taken")
	}

	if err := s.conn.Export(&ibusFactory{server: s}, IBusFactoryPath, IBusFactoryInterface); err != nil {
		s.conn.Close()
		return fmt.Errorf("export factory: %w", err)
	}

	s.logger.Info("ibus engine started", "engine", s.opts.EngineName)
	return nil
}

// Close flushes every engine and drops the connection.
func (s *Server) Close() error {
	s.mu.Lock()
	engines := make([]*IBusEngine, 0, len(s.engines))
	for _, e := range s.engines {
		engines = append(engines, e)
	}
	s.mu.Unlock()

	for _, e := range engines {
		e.flush()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Server) createEngine(name string) (dbus.ObjectPath, error) {
	if name != s.opts.EngineName {
		return "", fmt.Errorf("unknown engine %q", name)
	}

	s.mu.Lock()
	s.nextID++
	path := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/IBus/Engine/%d", s.nextID))
	s.mu.Unlock()

	e := newIBusEngine(path, s.conn, ServerEngineOptions(s.opts))
	e.onDestroy = func() { s.destroy(path) }

	if err := s.conn.Export(e, path, IBusEngineInterface); err != nil {
		return "", fmt.Errorf("export engine: %w", err)
	}
	if err := s.conn.Export(e, path, IBusServiceInterface); err != nil {
		return "", fmt.Errorf("export service: %w", err)
	}

	s.mu.Lock()
	s.engines[path] = e
	s.mu.Unlock()

	s.logger.Debug("engine created", "path", string(path))
	return path, nil
}

func (s *Server) destroy(path dbus.ObjectPath) {
	s.mu.Lock()
	delete(s.engines, path)
	s.mu.Unlock()

	s.conn.Export(nil, path, IBusEngineInterface)
	s.conn.Export(nil, path, IBusServiceInterface)
	s.logger.Debug("engine destroyed", "path", string(path))
}

// ServerEngineOptions derives per-engine options from the server's.
func ServerEngineOptions(o ServerOptions) Options {
	return Options{
		Settings: o.Settings,
		Logger:   o.Logger,
		Journal:  o.Journal,
	}
}

// ibusFactory implements the IBus Factory D-Bus interface.
type ibusFactory struct {
	server *Server
}

// CreateEngine creates a new engine instance for IBus.
func (f *ibusFactory) CreateEngine(engineName string) (dbus.ObjectPath, *dbus.Error) {
	path, err := f.server.createEngine(engineName)
	if err != nil {
		return "", dbus.NewError("org.freedesktop.IBus.NoEngine", []interface{}{err.Error()})
	}
	return path, nil
}

// IBusEngine is one IBus input context. Its exported methods are called
// over D-Bus.
type IBusEngine struct {
	path      dbus.ObjectPath
	emitter   signalEmitter
	engine    *Engine
	field     *memhost.Field
	logger    *logging.Logger
	onDestroy func()

	mu           sync.Mutex
	enabled      bool
	preeditShown bool
}

func newIBusEngine(path dbus.ObjectPath, emitter signalEmitter, opts Options) *IBusEngine {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &IBusEngine{
		path:    path,
		emitter: emitter,
		engine:  NewEngine(opts),
		field:   memhost.New(),
		logger:  opts.Logger.WithComponent("ibus"),
		enabled: true,
	}
}

// ProcessKeyEvent handles key press/release events from IBus.
// Returns true if the key was consumed, false to pass through.
func (e *IBusEngine) ProcessKeyEvent(keyval, keycode, state uint32) (bool, *dbus.Error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		return false, nil
	}
	code, mods, chars, ok := translateKey(keyval, keycode, state)
	if !ok {
		return false, nil
	}

	res, err := e.engine.ProcessKey(code, mods, chars, e.field)
	if err != nil {
		e.logger.Warn("key dropped", "code", code.String(), "error", err)
		e.field.Discard()
		e.sync()
		return false, nil
	}
	e.sync()
	return res.Consumed, nil
}

// sync emits the difference between the field and what the client shows.
func (e *IBusEngine) sync() {
	if committed := e.field.TakeCommitted(); committed != "" {
		e.emit("CommitText", textVariant(committed, false))
	}

	preedit := e.field.Preedit()
	switch {
	case preedit != "":
		cursor := uint32(len([]rune(preedit)))
		e.emit("UpdatePreeditText", textVariant(preedit, true), cursor, true, uint32(0))
		e.preeditShown = true
	case e.preeditShown:
		e.emit("HidePreeditText")
		e.preeditShown = false
	}
}

func (e *IBusEngine) emit(signal string, values ...interface{}) {
	if e.emitter == nil {
		return
	}
	if err := e.emitter.Emit(e.path, IBusEngineInterface+"."+signal, values...); err != nil {
		e.logger.Warn("signal failed", "signal", signal, "error", err)
	}
}

// flush delivers a pending dead-key mark and commits the composition so
// nothing typed is lost when the context goes away.
func (e *IBusEngine) flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, _, err := e.engine.Flush(e.field); err != nil {
		e.logger.Warn("flush failed", "error", err)
	}
	e.field.CommitAll()
	e.engine.Reset()
	e.sync()
}

// FocusIn is called when the engine gains input focus.
func (e *IBusEngine) FocusIn() *dbus.Error {
	e.logger.Debug("focus in", "path", string(e.path))
	return nil
}

// FocusOut is called when the engine loses input focus.
func (e *IBusEngine) FocusOut() *dbus.Error {
	e.flush()
	return nil
}

// Enable is called when the engine is enabled.
func (e *IBusEngine) Enable() *dbus.Error {
	e.mu.Lock()
	e.enabled = true
	e.mu.Unlock()
	return nil
}

// Disable is called when the engine is disabled.
func (e *IBusEngine) Disable() *dbus.Error {
	e.flush()
	e.mu.Lock()
	e.enabled = false
	e.mu.Unlock()
	return nil
}

// Reset discards the composition without committing it.
func (e *IBusEngine) Reset() *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.engine.Reset()
	e.field.Discard()
	e.sync()
	return nil
}

// Destroy is called when IBus drops the input context.
func (e *IBusEngine) Destroy() *dbus.Error {
	e.flush()
	if e.onDestroy != nil {
		e.onDestroy()
	}
	return nil
}

// SetCapabilities informs about client capabilities.
func (e *IBusEngine) SetCapabilities(caps uint32) *dbus.Error { return nil }

// SetContentType informs about the type of content being edited.
func (e *IBusEngine) SetContentType(purpose, hints uint32) *dbus.Error { return nil }

// SetCursorLocation informs about cursor position.
func (e *IBusEngine) SetCursorLocation(x, y, w, h int32) *dbus.Error { return nil }

// SetSurroundingText provides context around the cursor.
func (e *IBusEngine) SetSurroundingText(text dbus.Variant, cursorPos, anchorPos uint32) *dbus.Error {
	return nil
}

// PropertyActivate handles property activations.
func (e *IBusEngine) PropertyActivate(propName string, state uint32) *dbus.Error { return nil }

// PageUp handles page up in candidate list.
func (e *IBusEngine) PageUp() *dbus.Error { return nil }

// PageDown handles page down in candidate list.
func (e *IBusEngine) PageDown() *dbus.Error { return nil }

// CursorUp handles cursor up in candidate list.
func (e *IBusEngine) CursorUp() *dbus.Error { return nil }

// CursorDown handles cursor down in candidate list.
func (e *IBusEngine) CursorDown() *dbus.Error { return nil }

// CandidateClicked handles candidate selection.
func (e *IBusEngine) CandidateClicked(index, button, state uint32) *dbus.Error { return nil }

// The IBus serialization of IBusText, IBusAttrList and IBusAttribute.
type ibusText struct {
	Name        string
	Attachments map[string]dbus.Variant
	Text        string
	AttrList    dbus.Variant
}

type ibusAttrList struct {
	Name        string
	Attachments map[string]dbus.Variant
	Attributes  []dbus.Variant
}

type ibusAttribute struct {
	Name        string
	Attachments map[string]dbus.Variant
	Type        uint32
	Value       uint32
	StartIndex  uint32
	EndIndex    uint32
}

const (
	ibusAttrTypeUnderline   = 1
	ibusAttrUnderlineSingle = 1
)

// textVariant wraps s as an IBusText. Preedit text is underlined.
func textVariant(s string, underline bool) dbus.Variant {
	attrs := []dbus.Variant{}
	if underline {
		attrs = append(attrs, dbus.MakeVariant(ibusAttribute{
			Name:        "IBusAttribute",
			Attachments: map[string]dbus.Variant{},
			Type:        ibusAttrTypeUnderline,
			Value:       ibusAttrUnderlineSingle,
			EndIndex:    uint32(len([]rune(s))),
		}))
	}
	return dbus.MakeVariant(ibusText{
		Name:        "IBusText",
		Attachments: map[string]dbus.Variant{},
		Text:        s,
		AttrList: dbus.MakeVariant(ibusAttrList{
			Name:        "IBusAttrList",
			Attachments: map[string]dbus.Variant{},
			Attributes:  attrs,
		}),
	})
}
