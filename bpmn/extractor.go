package bpmn

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	log "github.com/vine-io/vine/lib/logger"
)

const (
	// DefaultNamespace is the prefix bpmn.io and most modelers bind to the
	// BPMN 2.0 model namespace.
	DefaultNamespace = "bpmn"

	DefaultMatchTimeout = 2 * time.Second
)

// category describes how one Kind is found in the text. tags is a first match
// wins chain: the first tag pattern with a non-empty result is used and the
// others are never consulted.
type category struct {
	kind     Kind
	prefix   string
	fallback string
	tags     []string
}

// categories in output order.
var categories = []*category{
	startEventCategory,
	taskCategory,
	gatewayCategory,
	endEventCategory,
}

// nameAttr reads the label from a matched tag. It requires whitespace before
// the attribute, so a tag that only matched through e.g. camunda:name="..."
// falls back to the category placeholder.
var nameAttr = regexp2.MustCompile(`\sname="([^"]*)"`, regexp2.ECMAScript)

type Options struct {
	// Namespace is the element prefix, "bpmn" in <bpmn:task>. An empty
	// Namespace matches unprefixed tags.
	Namespace string
	// MatchTimeout bounds a single pattern scan. Zero disables the bound.
	MatchTimeout time.Duration
}

type Option func(*Options)

func WithNamespace(ns string) Option {
	return func(o *Options) {
		o.Namespace = ns
	}
}

func WithMatchTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.MatchTimeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Namespace:    DefaultNamespace,
		MatchTimeout: DefaultMatchTimeout,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// Extractor approximates the process elements of a BPMN document by scanning
// its text. It does not parse XML, follow sequence flows or validate anything.
// An Extractor is safe for concurrent use.
type Extractor struct {
	Options

	chains map[Kind][]*regexp2.Regexp
}

func NewExtractor(opts ...Option) *Extractor {
	options := NewOptions(opts...)

	x := &Extractor{
		Options: options,
		chains:  make(map[Kind][]*regexp2.Regexp, len(categories)),
	}
	for _, c := range categories {
		chain := make([]*regexp2.Regexp, 0, len(c.tags))
		for _, tag := range c.tags {
			re := regexp2.MustCompile(tagPattern(options.Namespace, tag), regexp2.ECMAScript)
			if options.MatchTimeout > 0 {
				re.MatchTimeout = options.MatchTimeout
			}
			chain = append(chain, re)
		}
		x.chains[c.kind] = chain
	}

	return x
}

// With returns a new Extractor built from x's options with opts applied on
// top of them.
func (x *Extractor) With(opts ...Option) *Extractor {
	base := x.Options
	return NewExtractor(append([]Option{func(o *Options) { *o = base }}, opts...)...)
}

func tagPattern(ns, tag string) string {
	name := tag
	if ns != "" {
		name = ns + ":" + tag
	}
	return `<` + regexp2.Escape(name) + `[^>]*name="([^"]*)"[^>]*>`
}

// Extract returns the start events, tasks, gateways and end events found in
// source, in that order. It never fails: text without recognisable tags
// yields an empty Sequence.
//
// Element ids are "{prefix}_{n}" where n is the length of the sequence when
// the element was appended, so they are unique within one result only.
func (x *Extractor) Extract(source string) Sequence {
	out := make(Sequence, 0)
	for _, c := range categories {
		for _, tag := range x.firstMatch(c, source) {
			out = append(out, &Element{
				Id:    fmt.Sprintf("%s_%d", c.prefix, len(out)),
				Kind:  c.kind,
				Label: labelOf(tag, c.fallback),
			})
		}
	}

	return out
}

func (x *Extractor) firstMatch(c *category, source string) []string {
	chain := x.chains[c.kind]
	for i, re := range chain {
		tags := x.findAll(re, source)
		if len(tags) > 0 {
			log.Tracef("%s: %d match(es) for <%s>", c.kind, len(tags), c.tags[i])
			return tags
		}
	}
	return nil
}

func (x *Extractor) findAll(re *regexp2.Regexp, source string) []string {
	tags := make([]string, 0)
	m, err := re.FindStringMatch(source)
	for m != nil && err == nil {
		tags = append(tags, m.String())
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		// a timeout keeps what was matched so far
		log.Debugf("scan %s stopped: %v", re.String(), err)
	}
	return tags
}

func labelOf(tag, fallback string) string {
	m, err := nameAttr.FindStringMatch(tag)
	if err != nil || m == nil {
		return fallback
	}
	return m.GroupByNumber(1).String()
}

var defaultExtractor = NewExtractor()

// Extract runs the default Extractor (bpmn namespace) over source.
func Extract(source string) Sequence {
	return defaultExtractor.Extract(source)
}
