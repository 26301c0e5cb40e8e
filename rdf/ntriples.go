package rdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decoder reads N-Triples or N-Quads statements one line at a time.
type Decoder struct {
	reader *bufio.Reader
	format Format
	opts   DecodeOptions
	line   int
	count  int64
	err    error
}

// NewDecoder returns a decoder for FormatNTriples or FormatNQuads.
// Other formats yield ErrUnsupportedFormat.
func NewDecoder(r io.Reader, format Format, opts DecodeOptions) (*Decoder, error) {
	if format != FormatNTriples && format != FormatNQuads {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return &Decoder{
		reader: bufio.NewReader(r),
		format: format,
		opts:   normalizeDecodeOptions(opts),
	}, nil
}

// Next returns the next statement, or io.EOF when the input is exhausted.
// For N-Triples input the returned quad has a nil graph.
func (d *Decoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	for {
		if err := d.opts.Context.Err(); err != nil {
			d.err = err
			return Quad{}, err
		}
		line, err := readLineWithLimit(d.reader, d.opts.MaxLineBytes)
		if err != nil {
			if err != io.EOF {
				err = wrapParseError(string(d.format), "", d.line+1, err)
			}
			d.err = err
			return Quad{}, err
		}
		d.line++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quad, err := parseNTLine(line, d.format, d.opts)
		if err != nil {
			d.err = wrapParseError(string(d.format), line, d.line, err)
			return Quad{}, d.err
		}
		d.count++
		if d.opts.MaxTriples > 0 && d.count > d.opts.MaxTriples {
			d.err = ErrTripleLimitExceeded
			return Quad{}, d.err
		}
		return quad, nil
	}
}

// Err returns the first non-EOF error the decoder hit.
func (d *Decoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int { return d.line }

// ParseTerm parses a single term in N-Triples syntax. In addition to IRIs,
// blank nodes, literals and quoted triples it accepts "?name" variables and
// "{...}" graph literals as rendered by Term.String.
func ParseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty term", ErrInvalidArgument)
	case strings.HasPrefix(s, "?"):
		return Variable{Name: s[1:]}, nil
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		return GraphLiteral{Statements: s[1 : len(s)-1]}, nil
	}
	cursor := &ntCursor{input: s}
	term, err := cursor.parseTerm(true)
	if err != nil {
		return nil, wrapParseError("ntriples", s, 0, err)
	}
	cursor.skipWS()
	if cursor.pos != len(cursor.input) {
		return nil, wrapParseError("ntriples", s, 0, cursor.errorf("trailing input after term"))
	}
	return term, nil
}

func parseNTLine(line string, format Format, opts DecodeOptions) (Quad, error) {
	cursor := &ntCursor{input: line, opts: opts}
	subject, err := cursor.parseTerm(false)
	if err != nil {
		return Quad{}, err
	}
	predicate, err := cursor.parseIRI()
	if err != nil {
		return Quad{}, err
	}
	object, err := cursor.parseTerm(true)
	if err != nil {
		return Quad{}, err
	}

	var graph Term
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '.' {
		if format == FormatNTriples {
			return Quad{}, cursor.errorf("graph term not allowed in N-Triples")
		}
		graph, err = cursor.parseGraphName()
		if err != nil {
			return Quad{}, err
		}
	}
	if !cursor.consume('.') {
		return Quad{}, cursor.errorf("expected '.' at end of statement")
	}
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '#' {
		return Quad{}, cursor.errorf("unexpected content after '.'")
	}
	return Quad{S: subject, P: predicate, O: object, G: graph}, nil
}

type ntCursor struct {
	input string
	pos   int
	opts  DecodeOptions
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) parseGraphName() (Term, error) {
	c.skipWS()
	if strings.HasPrefix(c.input[c.pos:], "_:") {
		return c.parseBlankNode()
	}
	return c.parseIRI()
}

func (c *ntCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case strings.HasPrefix(c.input[c.pos:], "<<"):
		return c.parseTripleTerm()
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token")
	}
}

func (c *ntCursor) parseIRI() (IRI, error) {
	c.skipWS()
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value := c.input[start:c.pos]
	c.pos++
	if strings.Contains(value, `\u`) || strings.Contains(value, `\U`) {
		unescaped, err := UnescapeString(value)
		if err != nil {
			return IRI{}, c.errorf("invalid IRI escape: %v", err)
		}
		value = unescaped
	}
	if c.opts.StrictIRIValidation {
		if err := ValidateIRI(value); err != nil {
			return IRI{}, err
		}
	}
	if c.opts.Interner != nil {
		return c.opts.Interner.Intern(value), nil
	}
	return IRI{Value: value}, nil
}

func (c *ntCursor) parseBlankNode() (BlankNode, error) {
	c.skipWS()
	if !strings.HasPrefix(c.input[c.pos:], "_:") {
		return BlankNode{}, c.errorf("expected blank node")
	}
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// A trailing '.' belongs to the statement, not the label.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	c.skipWS()
	if !c.consume('"') {
		return Literal{}, c.errorf("expected literal")
	}
	start := c.pos
	closed := false
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '\\' {
			c.pos += 2
			continue
		}
		if ch == '"' {
			closed = true
			break
		}
		c.pos++
	}
	if !closed || c.pos > len(c.input) {
		return Literal{}, c.errorf("unterminated literal")
	}
	lexical, err := UnescapeString(c.input[start:c.pos])
	if err != nil {
		return Literal{}, c.errorf("%v", err)
	}
	c.pos++
	if strings.HasPrefix(c.input[c.pos:], "@") {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) && c.input[c.pos] != '.' {
			c.pos++
		}
		tag := c.input[start:c.pos]
		if !isValidLangTag(tag) {
			return Literal{}, c.errorf("invalid language tag %q", tag)
		}
		return Literal{Lexical: lexical, Lang: tag}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		switch dt.Value {
		case xsdString.Value:
			// Simple literals and xsd:string literals are the same term.
			return Literal{Lexical: lexical}, nil
		case rdfLangString.Value:
			return Literal{}, c.errorf("%s literal without a language tag", renderIRI(dt))
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *ntCursor) parseTripleTerm() (Term, error) {
	c.pos += 2
	subject, err := c.parseTerm(false)
	if err != nil {
		return nil, err
	}
	predicate, err := c.parseIRI()
	if err != nil {
		return nil, err
	}
	object, err := c.parseTerm(true)
	if err != nil {
		return nil, err
	}
	c.skipWS()
	if !strings.HasPrefix(c.input[c.pos:], ">>") {
		return nil, c.errorf("expected '>>'")
	}
	c.pos += 2
	return TripleTerm{S: subject, P: predicate, O: object}, nil
}

func (c *ntCursor) errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '<', '"':
		return true
	default:
		return false
	}
}

// Encoder writes statements as N-Triples or N-Quads.
type Encoder struct {
	writer *bufio.Writer
	format Format
	err    error
}

// NewEncoder returns an encoder for FormatNTriples or FormatNQuads.
func NewEncoder(w io.Writer, format Format) (*Encoder, error) {
	if format != FormatNTriples && format != FormatNQuads {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return &Encoder{writer: bufio.NewWriter(w), format: format}, nil
}

// WriteTriple writes a triple in the default graph.
func (e *Encoder) WriteTriple(t Triple) error {
	return e.Write(t.ToQuad())
}

// Write writes one statement. The graph name is ignored for N-Triples.
func (e *Encoder) Write(q Quad) error {
	if e.err != nil {
		return e.err
	}
	if q.S == nil || q.P == nil || q.O == nil {
		return errors.New("ntriples: missing statement fields")
	}
	for _, term := range []Term{q.S, q.P, q.O} {
		if k := term.Kind(); k == TermVariable || k == TermGraphLiteral {
			return fmt.Errorf("%w: %s term cannot be written as N-Triples", ErrUnsupported, k)
		}
	}
	line := renderTerm(q.S) + " " + renderTerm(q.P) + " " + renderTerm(q.O)
	if e.format == FormatNQuads && q.G != nil {
		line += " " + renderTerm(q.G)
	}
	line += " .\n"
	_, err := e.writer.WriteString(line)
	if err != nil {
		e.err = err
	}
	return err
}

// Flush writes buffered output.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

// Close flushes the encoder.
func (e *Encoder) Close() error {
	return e.Flush()
}

func renderIRI(iri IRI) string {
	return "<" + iri.Value + ">"
}

// FormatTerm renders a term in N-Triples syntax. ParseTerm reverses it.
func FormatTerm(term Term) string {
	return renderTerm(term)
}

func renderTerm(term Term) string {
	switch value := term.(type) {
	case IRI:
		return renderIRI(value)
	case BlankNode:
		return value.String()
	case Literal:
		quoted := `"` + escapeLiteral(value.Lexical) + `"`
		if value.Lang != "" {
			return quoted + "@" + value.Lang
		}
		if value.Datatype.Value != "" {
			return quoted + "^^" + renderIRI(value.Datatype)
		}
		return quoted
	case TripleTerm:
		return "<< " + renderTerm(value.S) + " " + renderIRI(value.P) + " " + renderTerm(value.O) + " >>"
	case Variable, GraphLiteral:
		return value.String()
	case nil:
		return ""
	default:
		return term.String()
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}
