package el

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strconv"

	"github.com/vango-dev/domkit/internal/errors"
	"github.com/vango-dev/domkit/pkg/dom"
)

// DefaultTag is used when no tag is given and none can be inferred.
const DefaultTag = "span"

// Sentinel causes wrapped by Build errors.
var (
	ErrNilSpec      = stderrors.New("el: nil description")
	ErrInvalidSVG   = stderrors.New("el: invalid svg markup")
	ErrInvalidValue = stderrors.New("el: invalid attribute value")
	ErrPanic        = stderrors.New("el: construction panicked")
)

// Builder builds elements into one document.
type Builder struct {
	doc    *dom.Document
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for warnings and construction failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Builder for doc.
func New(doc *dom.Document, opts ...Option) *Builder {
	b := &Builder{
		doc:    doc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build is shorthand for New(doc).Build(spec, parent).
func Build(doc *dom.Document, spec *Spec, parent *dom.Element) (*dom.Element, error) {
	return New(doc).Build(spec, parent)
}

// Document returns the document elements are created in.
func (b *Builder) Document() *dom.Document { return b.doc }

// Build constructs the element described by spec. The parent is only used
// to infer the tag and is not modified; callers append the result
// themselves. On failure the element is nil and no partial tree escapes.
func (b *Builder) Build(spec *Spec, parent *dom.Element) (*dom.Element, error) {
	if spec == nil {
		err := errors.New("E004").Wrap(ErrNilSpec)
		b.logger.Error("element build failed", "error", err)
		return nil, err
	}
	if spec.Node != nil {
		return spec.Node, nil
	}
	if spec.SVG != "" {
		node, err := b.doc.ParseSVG(spec.SVG)
		if err != nil {
			err := errors.New("E010").Wrap(fmt.Errorf("%w: %w", ErrInvalidSVG, err))
			b.logger.Error("svg parse failed", "error", err)
			return nil, err
		}
		return node, nil
	}

	node, err := b.construct(spec, parent)
	if err != nil {
		b.logger.Error("element build failed", "tag", spec.Tag, "error", err)
		return nil, err
	}
	return node, nil
}

func (b *Builder) construct(spec *Spec, parent *dom.Element) (node *dom.Element, err error) {
	defer func() {
		if r := recover(); r != nil {
			node = nil
			err = errors.New("E002").Wrap(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	node, err = b.create(b.tagFor(spec, parent), parent)
	if err != nil {
		return nil, errors.New("E001").Wrap(err)
	}

	if spec.Text != "" {
		node.SetTextContent(spec.Text)
	}
	if spec.HTML != "" {
		if err := node.SetInnerHTML(spec.HTML); err != nil {
			return nil, errors.New("E001").Wrap(err)
		}
	}

	if err := applyAttributes(node, spec); err != nil {
		return nil, err
	}

	for _, name := range sortedKeys(spec.Props) {
		v := spec.Props[name]
		if isNil(v) {
			continue
		}
		if err := node.SetProperty(name, v); err != nil {
			return nil, errors.New("E001").Wrap(err)
		}
	}

	for i, childSpec := range spec.Content {
		if childSpec == nil {
			continue
		}
		child, err := b.Build(childSpec, node)
		if err != nil {
			b.logger.Debug("skipping child", "parent", node.Tag(), "index", i, "error", err)
			continue
		}
		if err := node.AppendChild(child); err != nil {
			return nil, errors.New("E001").Wrap(err)
		}
	}

	for _, name := range sortedKeys(spec.Events) {
		if fn := spec.Events[name]; fn != nil {
			node.AddEventListener(name, fn)
		}
	}

	if spec.Callback != nil {
		spec.Callback(node, spec, parent)
	}
	return node, nil
}

// tagFor returns the explicit tag or infers one from the parent.
func (b *Builder) tagFor(spec *Spec, parent *dom.Element) string {
	if spec.Tag != "" {
		return spec.Tag
	}
	if parent == nil {
		b.logger.Warn("no tag specified and no parent to infer from", "default", DefaultTag)
		return DefaultTag
	}
	switch parent.Tag() {
	case "select":
		return "option"
	case "ol", "ul":
		return "li"
	}
	b.logger.Warn("no tag specified", "parent", parent.Tag(), "default", DefaultTag)
	return DefaultTag
}

// create makes the element, staying in the SVG namespace below SVG parents.
func (b *Builder) create(tag string, parent *dom.Element) (*dom.Element, error) {
	if parent != nil && parent.Namespace() == dom.NamespaceSVG && parent.Tag() != "foreignObject" {
		return b.doc.CreateElementNS(dom.NamespaceSVG, tag)
	}
	return b.doc.CreateElement(tag)
}

func applyAttributes(node *dom.Element, spec *Spec) error {
	set := func(name, value string) error {
		if err := node.SetAttribute(name, value); err != nil {
			return errors.New("E001").Wrap(err)
		}
		return nil
	}

	if spec.ID != "" {
		if err := set("id", spec.ID); err != nil {
			return err
		}
	}
	if spec.Class != "" {
		if err := set("class", spec.Class); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(spec.Attrs) {
		if IsReserved(name) {
			continue
		}
		v := spec.Attrs[name]
		if isNil(v) {
			continue
		}
		s, err := attrValue(v)
		if err != nil {
			return errors.New("E003").
				WithDetail(fmt.Sprintf("attribute %q has unsupported type %T", name, v)).
				Wrap(err)
		}
		if err := set(name, s); err != nil {
			return err
		}
	}
	return nil
}

// attrValue stringifies a primitive the way setAttribute does.
func attrValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
