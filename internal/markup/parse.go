package markup

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/twintree/internal/view"
	"golang.org/x/net/html"
)

var (
	// ErrUnbalanced is returned for a closing tag that does not match the
	// open element.
	ErrUnbalanced = errors.New("markup: unbalanced tags")
	// ErrSelection is returned for unpaired or misplaced selection brackets.
	ErrSelection = errors.New("markup: invalid selection markers")
)

// inlineNames parse as attribute elements when no kind prefix is given.
var inlineNames = map[string]bool{
	"a": true, "b": true, "i": true, "u": true, "s": true, "em": true,
	"strong": true, "span": true, "code": true, "sub": true, "sup": true,
	"mark": true, "small": true,
}

// emptyNames parse as empty elements when no kind prefix is given.
var emptyNames = map[string]bool{"img": true, "br": true, "hr": true}

var kindPrefixes = map[string]view.Kind{
	"container": view.KindContainer,
	"attribute": view.KindAttribute,
	"empty":     view.KindEmpty,
	"ui":        view.KindUI,
}

// Result is the outcome of Parse.
type Result struct {
	// Fragment holds the parsed nodes.
	Fragment *view.Element
	// Ranges are the selection ranges in document order.
	Ranges []view.Range
}

type frame struct {
	tag      string
	kind     view.Kind
	name     string
	attrs    map[string]string
	opts     []view.Option
	children []view.Node
	element  *view.Element
}

// pending is a bracket position not yet resolvable to a node.
type pending struct {
	frame  *frame
	offset int
	text   *view.Text
}

type parser struct {
	stack   []*frame
	marks   []pending
	opening []bool
}

// Parse reads markup into a detached fragment.
func Parse(data string) (*Result, error) {
	p := &parser{stack: []*frame{{kind: view.KindFragment}}}
	z := html.NewTokenizer(strings.NewReader(data))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("markup: %w", err)
			}
			return p.finish()
		case html.TextToken:
			if err := p.text(string(z.Text())); err != nil {
				return nil, err
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			f, err := p.open(z)
			if err != nil {
				return nil, err
			}
			p.stack = append(p.stack, f)
			if tt == html.SelfClosingTagToken {
				p.close()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if len(p.stack) < 2 || p.top().tag != string(name) {
				return nil, fmt.Errorf("%w: </%s>", ErrUnbalanced, name)
			}
			p.close()
		}
	}
}

// MustParse is like Parse but panics on error. It is meant for tests.
func MustParse(data string) *Result {
	r, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return r
}

func (p *parser) top() *frame { return p.stack[len(p.stack)-1] }

func (p *parser) open(z *html.Tokenizer) (*frame, error) {
	raw, hasAttr := z.TagName()
	tag := string(raw)
	f := &frame{tag: tag, name: tag, attrs: make(map[string]string)}
	if prefix, name, ok := strings.Cut(tag, ":"); ok {
		kind, known := kindPrefixes[prefix]
		if !known {
			return nil, fmt.Errorf("markup: unknown element kind %q", prefix)
		}
		f.kind, f.name = kind, name
	} else {
		switch {
		case inlineNames[tag]:
			f.kind = view.KindAttribute
		case emptyNames[tag]:
			f.kind = view.KindEmpty
		default:
			f.kind = view.KindContainer
		}
	}
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = z.TagAttr()
		switch key := string(k); key {
		case "view-priority":
			n, err := strconv.Atoi(string(v))
			if err != nil {
				return nil, fmt.Errorf("markup: view-priority: %w", err)
			}
			f.opts = append(f.opts, view.WithPriority(n))
		case "view-id":
			f.opts = append(f.opts, view.WithElementID(string(v)))
		default:
			f.attrs[key] = string(v)
		}
	}
	return f, nil
}

func (p *parser) close() {
	f := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	opts := append(f.opts, view.WithChildren(f.children...))
	f.element = view.NewElement(f.kind, f.name, f.attrs, opts...)
	parent := p.top()
	parent.children = append(parent.children, f.element)
}

func (p *parser) mark(m pending, open bool) {
	p.marks = append(p.marks, m)
	p.opening = append(p.opening, open)
}

// text splits s on selection brackets. "[" and "]" end the current text node
// and mark a position between nodes; "{" and "}" mark a position inside it.
func (p *parser) text(s string) error {
	f := p.top()
	var buf []rune
	var inText []int
	var inTextOpen []bool
	flush := func() {
		if len(buf) == 0 {
			if len(inText) > 0 {
				// Brackets in an empty run fall back to element positions.
				for i := range inText {
					p.mark(pending{frame: f, offset: len(f.children)}, inTextOpen[i])
				}
				inText, inTextOpen = nil, nil
			}
			return
		}
		t := view.NewText(string(buf))
		for i, off := range inText {
			p.mark(pending{text: t, offset: off}, inTextOpen[i])
		}
		f.children = append(f.children, t)
		buf, inText, inTextOpen = nil, nil, nil
	}
	for _, r := range s {
		switch r {
		case '[', ']':
			flush()
			p.mark(pending{frame: f, offset: len(f.children)}, r == '[')
		case '{', '}':
			inText = append(inText, len(buf))
			inTextOpen = append(inTextOpen, r == '{')
		default:
			buf = append(buf, r)
		}
	}
	flush()
	return nil
}

func (p *parser) finish() (*Result, error) {
	if len(p.stack) != 1 {
		return nil, fmt.Errorf("%w: <%s> not closed", ErrUnbalanced, p.top().tag)
	}
	root := p.stack[0]
	root.element = view.NewFragment(root.children...)

	res := &Result{Fragment: root.element}
	var start *view.Position
	for i, m := range p.marks {
		var pos view.Position
		if m.text != nil {
			pos = view.PositionAt(m.text, m.offset)
		} else {
			pos = view.PositionAt(m.frame.element, m.offset)
		}
		switch {
		case p.opening[i] && start == nil:
			start = &pos
		case !p.opening[i] && start != nil:
			res.Ranges = append(res.Ranges, view.NewRange(*start, pos))
			start = nil
		default:
			return nil, ErrSelection
		}
	}
	if start != nil {
		return nil, ErrSelection
	}
	return res, nil
}
