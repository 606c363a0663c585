package partial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrSyntax is returned when the input can never become valid JSON,
// no matter what is appended to it.
var ErrSyntax = errors.New("partial json: syntax error")

// Parse decodes the longest meaningful prefix of text. A nil Node with a nil
// error means no value has started yet. Members whose key is still open,
// or whose value has not started, are left out of their object.
func Parse(text string) (*Node, error) {
	p := &parser{src: text}
	p.skipSpace()
	if p.eof() {
		return nil, nil
	}
	n, err := p.value()
	if err != nil {
		return nil, err
	}
	if n != nil && n.Complete {
		p.skipSpace()
		if !p.eof() {
			return nil, fmt.Errorf("%w: trailing data at offset %d", ErrSyntax, p.pos)
		}
	}
	return n, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) fail(what string) error {
	return fmt.Errorf("%w: %s at offset %d", ErrSyntax, what, p.pos)
}

// value returns nil, nil when input ends before the value has produced anything useful.
func (p *parser) value() (*Node, error) {
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		s, complete, err := p.str()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: String, Str: s, Complete: complete}, nil
	case c == 't':
		return p.literal("true", &Node{Kind: Bool, Bool: true, Complete: true})
	case c == 'f':
		return p.literal("false", &Node{Kind: Bool, Complete: true})
	case c == 'n':
		return p.literal("null", &Node{Kind: Null, Complete: true})
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return nil, p.fail(fmt.Sprintf("unexpected character %q", c))
	}
}

func (p *parser) object() (*Node, error) {
	n := &Node{Kind: Object}
	p.pos++ // {
	for {
		p.skipSpace()
		if p.eof() {
			return n, nil
		}
		if p.src[p.pos] == '}' {
			p.pos++
			n.Complete = true
			return n, nil
		}
		if len(n.Fields) > 0 {
			if p.src[p.pos] != ',' {
				return nil, p.fail("expected ',' or '}'")
			}
			p.pos++
			p.skipSpace()
			if p.eof() {
				return n, nil
			}
		}
		if p.src[p.pos] != '"' {
			return nil, p.fail("expected object key")
		}
		key, complete, err := p.str()
		if err != nil {
			return nil, err
		}
		if !complete {
			return n, nil
		}
		p.skipSpace()
		if p.eof() {
			return n, nil
		}
		if p.src[p.pos] != ':' {
			return nil, p.fail("expected ':'")
		}
		p.pos++
		p.skipSpace()
		if p.eof() {
			return n, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return n, nil
		}
		n.Fields = append(n.Fields, Field{Key: key, Value: v})
		if !v.Complete {
			return n, nil
		}
	}
}

func (p *parser) array() (*Node, error) {
	n := &Node{Kind: Array}
	p.pos++ // [
	for {
		p.skipSpace()
		if p.eof() {
			return n, nil
		}
		if p.src[p.pos] == ']' {
			p.pos++
			n.Complete = true
			return n, nil
		}
		if len(n.Items) > 0 {
			if p.src[p.pos] != ',' {
				return nil, p.fail("expected ',' or ']'")
			}
			p.pos++
			p.skipSpace()
			if p.eof() {
				return n, nil
			}
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return n, nil
		}
		n.Items = append(n.Items, v)
		if !v.Complete {
			return n, nil
		}
	}
}

// str reads a string starting at the opening quote. An escape sequence cut
// off by the end of input is dropped from the partial value.
func (p *parser) str() (string, bool, error) {
	p.pos++ // "
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '"':
			p.pos++
			return sb.String(), true, nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				p.pos = len(p.src)
				return sb.String(), false, nil
			}
			esc := p.src[p.pos+1]
			switch esc {
			case '"', '\\', '/':
				sb.WriteByte(esc)
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				r, width, ok, err := p.unicodeEscape()
				if err != nil {
					return "", false, err
				}
				if !ok {
					p.pos = len(p.src)
					return sb.String(), false, nil
				}
				sb.WriteRune(r)
				p.pos += width
				continue
			default:
				return "", false, p.fail(fmt.Sprintf("invalid escape %q", esc))
			}
			p.pos += 2
		case c < 0x20:
			return "", false, p.fail("control character in string")
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			if r == utf8.RuneError && size == 1 && !utf8.FullRuneInString(p.src[p.pos:]) {
				// multi-byte character split across chunks
				p.pos = len(p.src)
				return sb.String(), false, nil
			}
			sb.WriteString(p.src[p.pos : p.pos+size])
			p.pos += size
		}
	}
	return sb.String(), false, nil
}

// unicodeEscape decodes \uXXXX (and a following low surrogate) at p.pos.
// ok is false when the input ends inside the escape.
func (p *parser) unicodeEscape() (r rune, width int, ok bool, err error) {
	hex := func(at int) (rune, bool, error) {
		if at+6 > len(p.src) {
			return 0, false, nil
		}
		v, perr := strconv.ParseUint(p.src[at+2:at+6], 16, 16)
		if perr != nil {
			return 0, false, p.fail("invalid unicode escape")
		}
		return rune(v), true, nil
	}

	r, ok, err = hex(p.pos)
	if err != nil || !ok {
		return 0, 0, ok, err
	}
	if !utf16.IsSurrogate(r) {
		return r, 6, true, nil
	}
	next := p.pos + 6
	if next >= len(p.src) || (p.src[next] == '\\' && next+1 == len(p.src)) {
		return 0, 0, false, nil
	}
	if p.src[next] != '\\' || p.src[next+1] != 'u' {
		return utf8.RuneError, 6, true, nil
	}
	lo, ok, err := hex(next)
	if err != nil || !ok {
		return 0, 0, ok, err
	}
	return utf16.DecodeRune(r, lo), 12, true, nil
}

// number reads a numeric literal. A number running into the end of input
// may still grow, so it is reported incomplete.
func (p *parser) number() (*Node, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-0123456789.eE", p.src[p.pos]) >= 0 {
		p.pos++
	}
	raw := p.src[start:p.pos]
	complete := !p.eof()

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if complete {
			return nil, p.fail(fmt.Sprintf("invalid number %q", raw))
		}
		trimmed := strings.TrimRight(raw, "+-.eE")
		if trimmed == "" {
			return nil, nil
		}
		v, err = strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, p.fail(fmt.Sprintf("invalid number %q", raw))
		}
	}
	return &Node{Kind: Number, Number: v, Complete: complete}, nil
}

func (p *parser) literal(word string, n *Node) (*Node, error) {
	rest := p.src[p.pos:]
	if strings.HasPrefix(rest, word) {
		p.pos += len(word)
		return n, nil
	}
	if strings.HasPrefix(word, rest) {
		p.pos = len(p.src)
		return nil, nil
	}
	return nil, p.fail("invalid literal")
}
