package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/davecgh/go-spew/spew"

	"github.com/instancio/instancio-sub017/feed"
	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/internal/ctxlog"
	"github.com/instancio/instancio-sub017/internal/diagnostic"
	"github.com/instancio/instancio-sub017/internal/directive"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/random"
	"github.com/instancio/instancio-sub017/settings"
)

var (
	ErrUnresolvedType   = errors.New("no generator for type")
	ErrSkippedDirective = errors.New("directive cannot be applied to a short-circuited node")
)

// NodeError reports a failure while generating the node at Path.
type NodeError struct {
	Path string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Request is one creation request.
type Request struct {
	Root       *node.Node
	Directives *directive.Set
	Registry   *generator.Registry
	Settings   *settings.Settings
	Random     random.Random

	// FeedStart is the row feed cursors start at, so batch request i reads
	// row i first.
	FeedStart int
}

// Result is the outcome of a successful request.
type Result struct {
	Value       reflect.Value
	Diagnostics diagnostic.Diagnostics
}

// Engine runs a single request. It is not safe for concurrent use.
type Engine struct {
	req   Request
	log   *slog.Logger
	debug bool
	diags diagnostic.Diagnostics

	cursors  map[*directive.Directive]*feed.Cursor
	bindings map[bindingKey]*feed.Binding
}

type bindingKey struct {
	directive *directive.Directive
	typ       reflect.Type
}

// New prepares an engine for req. Missing collaborators get defaults.
func New(ctx context.Context, req Request) *Engine {
	if req.Directives == nil {
		req.Directives = directive.NewSet()
	}
	if req.Registry == nil {
		req.Registry = generator.NewRegistry()
	}
	if req.Settings == nil {
		req.Settings = settings.Defaults()
	}
	if req.Random == nil {
		req.Random = random.NewTimeSeeded()
	}

	log := ctxlog.FromContext(ctx)

	return &Engine{
		req:      req,
		log:      log,
		debug:    log.Enabled(ctx, slog.LevelDebug),
		cursors:  make(map[*directive.Directive]*feed.Cursor),
		bindings: make(map[bindingKey]*feed.Binding),
	}
}

// Create runs req. See Engine.Run.
func Create(ctx context.Context, req Request) (*Result, error) {
	return New(ctx, req).Run(ctx)
}

// Run generates the root value and reports diagnostics. Generation errors
// abort the request; no partial value is returned.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	root := e.req.Root
	if root == nil {
		return nil, node.ErrNilType
	}

	e.req.Directives.MarkUsed(root)

	v, err := e.generate(ctx, root, false)
	if err != nil {
		return nil, err
	}

	if !v.IsValid() {
		v = reflect.Zero(root.Type)
	}

	for _, d := range e.req.Directives.Unused() {
		e.diags.AddWarning(diagnostic.CodeUnusedSelector,
			"selector did not match any node of "+root.Type.String(),
			d.String(), "", directive.ErrUnusedSelector)
	}

	if err := e.report(ctx); err != nil {
		return nil, err
	}

	if e.debug {
		e.log.DebugContext(ctx, "created value", "type", root.Type.String(), "value", spew.Sdump(v.Interface()))
	}

	return &Result{Value: v, Diagnostics: e.diags}, nil
}

// report applies the mode: strict promotes warnings to errors, lenient
// logs them.
func (e *Engine) report(ctx context.Context) error {
	if e.req.Settings.Mode() == settings.ModeStrict {
		e.diags.Promote()
		return e.diags.Error()
	}

	for _, w := range e.diags.Warnings {
		e.log.WarnContext(ctx, w.Message, "code", w.Code, "subject", w.Subject, "path", w.Path)
	}

	return nil
}
