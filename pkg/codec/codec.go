// Package codec plugs a version converter into JSON encoding and decoding.
//
// Decoding parses a document, reads the version it declares, migrates it up to the current
// version and binds it into a Go value. Encoding renders a Go value at the current version,
// migrates it to the version the caller asked for and stamps that version onto the output.
package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/repsejnworb/doc-migrator/pkg/document"
	"github.com/repsejnworb/doc-migrator/pkg/migrate"
	"github.com/repsejnworb/doc-migrator/pkg/version"
)

// DefaultVersionAttribute is the attribute holding the document version.
const DefaultVersionAttribute = "modelVersion"

// Codec encodes values of type T as versioned JSON documents with versions of type V.
// A Codec is safe for concurrent use once constructed.
type Codec[T any, V any] struct {
	scheme    version.Scheme[V]
	converter Converter[V]
	cfg       config
}

type config struct {
	subject     string
	versionAttr string
	targetAttr  string
	validator   *migrate.Validator
	log         *zap.Logger
}

// Option configures a Codec.
type Option func(*config)

// WithSubject names the document type in logs and metrics.
func WithSubject(name string) Option {
	return func(c *config) { c.subject = name }
}

// WithVersionAttribute sets the slash path of the version attribute.
func WithVersionAttribute(path string) Option {
	return func(c *config) {
		if path != "" {
			c.versionAttr = path
		}
	}
}

// WithTargetAttribute names an attribute a value may carry to request the version it is
// encoded as. The attribute is stripped from the output.
func WithTargetAttribute(path string) Option {
	return func(c *config) { c.targetAttr = path }
}

// WithValidator validates decoded documents against the current version's schema and
// encoded documents against the target version's schema, when such a schema exists.
func WithValidator(v *migrate.Validator) Option {
	return func(c *config) { c.validator = v }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a codec converting with conv. conv may be nil for types without history.
func New[T any, V any](scheme version.Scheme[V], conv Converter[V], opts ...Option) (*Codec[T, V], error) {
	if scheme == nil {
		return nil, fmt.Errorf("codec: version scheme is required")
	}
	cfg := config{
		versionAttr: DefaultVersionAttribute,
		log:         zap.NewNop(),
	}
	if s, ok := conv.(interface{ Subject() string }); ok {
		cfg.subject = s.Subject()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.log = cfg.log.With(zap.String("subject", cfg.subject))
	return &Codec[T, V]{scheme: scheme, converter: conv, cfg: cfg}, nil
}

type targetKey struct{}

// WithTargetVersion returns a context asking Encode to produce version v.
func WithTargetVersion[V any](ctx context.Context, v V) context.Context {
	return context.WithValue(ctx, targetKey{}, v)
}

// TargetVersion returns the version requested with WithTargetVersion.
func TargetVersion[V any](ctx context.Context) (V, bool) {
	v, ok := ctx.Value(targetKey{}).(V)
	return v, ok
}

// Decode parses data, migrates it to the current version and binds it into a T.
func (c *Codec[T, V]) Decode(ctx context.Context, data []byte) (T, error) {
	var out T
	doc, _, err := c.DecodeDocument(ctx, data)
	if err != nil {
		return out, err
	}
	raw, err := document.Marshal(doc)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%s: bind: %w", c.cfg.subject, err)
	}
	return out, nil
}

// DecodeDocument parses data and migrates it to the current version. It returns the
// migrated document and the version the input declared. A document without a version
// attribute is taken to be current.
func (c *Codec[T, V]) DecodeDocument(ctx context.Context, data []byte) (*document.Object, V, error) {
	start := time.Now()
	current := c.scheme.Current()

	doc, err := document.ParseObject(data)
	if err != nil {
		c.observe(pathDecode, start, resultFormat, err)
		return nil, current, fmt.Errorf("%s: %w: %w", c.cfg.subject, migrate.ErrShape, err)
	}
	declared, err := c.DeclaredVersion(doc)
	if err != nil {
		c.observe(pathDecode, start, resultVersion, err)
		return nil, current, err
	}
	doc, err = c.convert(pathDecode, start, doc, declared, current)
	return doc, declared, err
}

// Encode renders v at the current version, migrates it to the requested version and
// returns the JSON bytes.
func (c *Codec[T, V]) Encode(ctx context.Context, v T) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: render: %w", c.cfg.subject, err)
	}
	doc, err := document.ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", c.cfg.subject, migrate.ErrShape, err)
	}
	if doc, err = c.EncodeDocument(ctx, doc); err != nil {
		return nil, err
	}
	return document.Marshal(doc)
}

// EncodeDocument migrates a document at the current version to the requested one and
// stamps the chosen version. The target is taken from the context, then from the target
// attribute, then defaults to current.
func (c *Codec[T, V]) EncodeDocument(ctx context.Context, doc *document.Object) (*document.Object, error) {
	start := time.Now()
	target, err := c.targetVersion(ctx, doc)
	if err != nil {
		c.observe(pathEncode, start, resultVersion, err)
		return nil, err
	}
	return c.convert(pathEncode, start, doc, c.scheme.Current(), target)
}

// Convert migrates doc between two explicit versions, stamps the target version and
// validates the result.
func (c *Codec[T, V]) Convert(doc *document.Object, from, to V) (*document.Object, error) {
	return c.convert(pathConvert, time.Now(), doc, from, to)
}

func (c *Codec[T, V]) convert(path string, start time.Time, doc *document.Object, from, to V) (*document.Object, error) {
	var err error
	if c.converter != nil {
		if doc, err = c.converter.Migrate(doc, from, to); err != nil {
			c.observe(path, start, resultMigrate, err)
			return nil, err
		}
	}
	if err := c.stamp(doc, to); err != nil {
		c.observe(path, start, resultFormat, err)
		return nil, err
	}
	if err := c.validate(to, doc); err != nil {
		c.observe(path, start, resultSchema, err)
		return nil, err
	}
	c.observe(path, start, resultOK, nil,
		zap.String("from", c.scheme.Format(from)),
		zap.String("to", c.scheme.Format(to)))
	return doc, nil
}

// DeclaredVersion reads the version attribute of doc. A missing or null attribute means
// the current version; text that is not a version of the scheme is an error.
func (c *Codec[T, V]) DeclaredVersion(doc *document.Object) (V, error) {
	n, ok, err := document.Lookup(doc, c.cfg.versionAttr)
	if err != nil {
		var zero V
		return zero, err
	}
	if !ok || document.IsNull(n) {
		return c.scheme.Current(), nil
	}
	return c.parseNode(c.cfg.versionAttr, n)
}

func (c *Codec[T, V]) targetVersion(ctx context.Context, doc *document.Object) (V, error) {
	var requested document.Node
	if c.cfg.targetAttr != "" {
		n, ok, err := document.Lookup(doc, c.cfg.targetAttr)
		if err != nil {
			var zero V
			return zero, err
		}
		if ok {
			requested = n
			if err := document.DeletePath(doc, c.cfg.targetAttr); err != nil {
				var zero V
				return zero, err
			}
		}
	}
	if v, ok := TargetVersion[V](ctx); ok {
		return v, nil
	}
	if !document.IsNull(requested) {
		return c.parseNode(c.cfg.targetAttr, requested)
	}
	return c.scheme.Current(), nil
}

// parseNode reads a version from a text node, or an integer node for numeric schemes.
func (c *Codec[T, V]) parseNode(attr string, n document.Node) (V, error) {
	var text string
	switch x := n.(type) {
	case document.Text:
		text = string(x)
	case document.Integer:
		text = x.Value.String()
	default:
		var zero V
		return zero, fmt.Errorf("%s: %w: attribute %s holds %s", c.cfg.subject, version.ErrUnknownVersion, attr, n.Kind())
	}
	v, err := c.scheme.Parse(text)
	if err != nil {
		return v, fmt.Errorf("%s: attribute %s: %w", c.cfg.subject, attr, err)
	}
	return v, nil
}

func (c *Codec[T, V]) stamp(doc *document.Object, v V) error {
	return document.SetPath(doc, c.cfg.versionAttr, document.Text(c.scheme.Format(v)))
}

func (c *Codec[T, V]) validate(v V, doc *document.Object) error {
	if c.cfg.validator == nil {
		return nil
	}
	text := c.scheme.Format(v)
	if !c.cfg.validator.Has(text) {
		return nil
	}
	return c.cfg.validator.Validate(text, doc)
}

func (c *Codec[T, V]) observe(path string, start time.Time, result string, err error, fields ...zap.Field) {
	migrationsTotal.WithLabelValues(c.cfg.subject, path, result).Inc()
	migrationDuration.WithLabelValues(c.cfg.subject, path).Observe(time.Since(start).Seconds())
	if err != nil {
		c.cfg.log.Warn("document migration failed",
			zap.String("path", path),
			zap.String("result", result),
			zap.Error(err))
		return
	}
	c.cfg.log.Debug("document migrated", append(fields, zap.String("path", path))...)
}
