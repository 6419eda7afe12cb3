package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/repsejnworb/doc-migrator/pkg/codec"
	"github.com/repsejnworb/doc-migrator/pkg/document"
	"github.com/repsejnworb/doc-migrator/pkg/migrate"
	"github.com/repsejnworb/doc-migrator/pkg/version"
)

// runner hides the version type chosen by the configuration from the commands.
type runner interface {
	subjects() []string
	run(subject string, in []byte, from, to string) (*document.Object, error)
	describe(subject string) (report, error)
	plan(subject, from, to string) ([]string, error)
	validate(in []byte, ver string) error
}

type report struct {
	Subject     string   `json:"subject"`
	Fingerprint string   `json:"fingerprint"`
	Changes     []string `json:"changes"`
}

// history is what the commands need beyond codec.Converter.
type history[V any] interface {
	Plan(from, to V) migrate.Plan[V]
	Fingerprint() uint64
}

func newRunner(cfg Config, log *zap.Logger) (runner, error) {
	vc := cfg.Versions
	switch vc.Scheme {
	case "enum":
		e, err := version.NewEnum(vc.Symbols...)
		if err != nil {
			return nil, err
		}
		return newEnv[version.Symbol](e, cfg, log)
	case "semver":
		s, err := version.NewSemver(vc.Current)
		if err != nil {
			return nil, err
		}
		return newEnv[string](s, cfg, log)
	case "integer":
		cur, err := strconv.ParseInt(vc.Current, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("current version: %w", err)
		}
		return newEnv[int64](version.NewInteger(cur), cfg, log)
	case "lexical":
		return newEnv[string](version.NewLexical(vc.Current), cfg, log)
	}
	return nil, fmt.Errorf("unknown version scheme %q", vc.Scheme)
}

type env[V any] struct {
	cfg       Config
	scheme    version.Scheme[V]
	factory   *codec.Factory[V]
	validator *migrate.Validator
	log       *zap.Logger
}

func newEnv[V any](scheme version.Scheme[V], cfg Config, log *zap.Logger) (*env[V], error) {
	sets, err := migrate.ReadDir(cfg.Changes)
	if err != nil {
		return nil, fmt.Errorf("read change sets: %w", err)
	}
	bySubject := make(map[string][]*migrate.ChangeSet)
	for _, cs := range sets {
		bySubject[cs.Subject] = append(bySubject[cs.Subject], cs)
	}

	e := &env[V]{
		cfg:     cfg,
		scheme:  scheme,
		factory: codec.NewFactory[V](),
		log:     log,
	}
	transforms := migrate.BuiltinTransforms()
	for subject, list := range bySubject {
		err := e.factory.Register(subject, func() (codec.Converter[V], error) {
			r := migrate.NewRegistry[V](subject, scheme.Compare, migrate.WithLogger(log))
			for _, cs := range list {
				if err := migrate.Apply(r, cs, scheme.Parse, transforms); err != nil {
					return nil, err
				}
			}
			return r, nil
		})
		if err != nil {
			return nil, err
		}
	}

	if cfg.Schemas != "" {
		e.validator = migrate.NewValidator()
		if err := e.validator.LoadAll(cfg.Schemas); err != nil {
			return nil, err
		}
	}
	log.Debug("loaded change sets", zap.Int("files", len(sets)), zap.Int("subjects", len(bySubject)))
	return e, nil
}

func (e *env[V]) subjects() []string {
	ids := e.factory.IDs()
	sort.Strings(ids)
	return ids
}

func (e *env[V]) codecFor(subject string) (*codec.Codec[json.RawMessage, V], error) {
	conv, err := e.factory.Get(subject)
	if err != nil {
		return nil, err
	}
	opts := []codec.Option{
		codec.WithSubject(subject),
		codec.WithVersionAttribute(e.cfg.VersionAttribute),
		codec.WithLogger(e.log),
	}
	if e.validator != nil {
		opts = append(opts, codec.WithValidator(e.validator))
	}
	return codec.New[json.RawMessage, V](e.scheme, conv, opts...)
}

func (e *env[V]) run(subject string, in []byte, from, to string) (*document.Object, error) {
	c, err := e.codecFor(subject)
	if err != nil {
		return nil, err
	}
	doc, err := document.ParseObject(in)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	var fromV V
	if from != "" {
		if fromV, err = e.scheme.Parse(from); err != nil {
			return nil, err
		}
	} else if fromV, err = c.DeclaredVersion(doc); err != nil {
		return nil, err
	}
	toV := e.scheme.Current()
	if to != "" {
		if toV, err = e.scheme.Parse(to); err != nil {
			return nil, err
		}
	}
	return c.Convert(doc, fromV, toV)
}

func (e *env[V]) describe(subject string) (report, error) {
	conv, err := e.factory.Get(subject)
	if err != nil {
		return report{}, err
	}
	rep := report{Subject: subject, Changes: conv.Describe()}
	if h, ok := conv.(history[V]); ok {
		rep.Fingerprint = fmt.Sprintf("%016x", h.Fingerprint())
	}
	return rep, nil
}

func (e *env[V]) plan(subject, from, to string) ([]string, error) {
	conv, err := e.factory.Get(subject)
	if err != nil {
		return nil, err
	}
	h, ok := conv.(history[V])
	if !ok {
		return nil, fmt.Errorf("converter %s cannot plan", subject)
	}
	fromV, err := e.scheme.Parse(from)
	if err != nil {
		return nil, err
	}
	toV, err := e.scheme.Parse(to)
	if err != nil {
		return nil, err
	}
	return h.Plan(fromV, toV).Descriptions(), nil
}

func (e *env[V]) validate(in []byte, ver string) error {
	if e.validator == nil {
		return errors.New("no schemas configured")
	}
	v, err := e.scheme.Parse(ver)
	if err != nil {
		return err
	}
	doc, err := document.Parse(in)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return e.validator.Validate(e.scheme.Format(v), doc)
}
