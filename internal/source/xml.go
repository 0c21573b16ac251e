package source

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

var byteOrderMark = []byte("\ufeff")

// XMLSource is a forward-only RecordSource over an XML stream.
// Not safe for concurrent use.
type XMLSource struct {
	dec  *xml.Decoder
	name string
	err  error

	depth      int
	rootSeen   bool
	rootClosed bool
}

// NewXMLSource creates a source reading rows from r. name identifies the
// stream in parse errors and may be empty.
func NewXMLSource(r io.Reader, name string) *XMLSource {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return &XMLSource{dec: dec, name: name}
}

// Next returns the next row as a Record, or io.EOF when the document ends.
// Attribute values are returned verbatim (after entity decoding); absent
// attributes are simply missing from the map. Once Next has returned an
// error every later call returns the same error.
func (s *XMLSource) Next() (xmlload.Record, error) {
	if s.err != nil {
		return nil, s.err
	}

	for {
		tok, err := s.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !s.rootSeen {
					s.err = s.malformed("no element found")
				} else {
					s.err = io.EOF
				}
			} else {
				s.err = s.parseError(err)
			}
			return nil, s.err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if s.rootClosed {
				s.err = s.malformed("junk after document element")
				return nil, s.err
			}
			s.rootSeen = true
			s.depth++
			if err := s.checkAttrs(t); err != nil {
				return nil, err
			}
			if t.Name.Local != xmlload.RowElement {
				continue
			}
			return record(t), nil
		case xml.EndElement:
			s.depth--
			if s.depth == 0 {
				s.rootClosed = true
			}
		case xml.CharData:
			if s.depth == 0 && len(bytes.TrimSpace(bytes.TrimPrefix(t, byteOrderMark))) > 0 {
				if s.rootClosed {
					s.err = s.malformed("junk after document element")
				} else {
					s.err = s.malformed("text before document element")
				}
				return nil, s.err
			}
		}
	}
}

// checkAttrs rejects an element that repeats an attribute name.
func (s *XMLSource) checkAttrs(start xml.StartElement) error {
	for i, attr := range start.Attr {
		for _, prev := range start.Attr[:i] {
			if prev.Name == attr.Name {
				s.err = s.malformed(fmt.Sprintf("duplicate attribute %q", attr.Name.Local))
				return s.err
			}
		}
	}
	return nil
}

func record(start xml.StartElement) xmlload.Record {
	rec := make(xmlload.Record, len(start.Attr))
	for _, attr := range start.Attr {
		rec[attr.Name.Local] = attr.Value
	}
	return rec
}

func (s *XMLSource) malformed(msg string) *xmlload.ParseError {
	line, _ := s.dec.InputPos()
	return &xmlload.ParseError{File: s.name, Line: line, Message: msg}
}

func (s *XMLSource) parseError(err error) *xmlload.ParseError {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &xmlload.ParseError{File: s.name, Line: syntaxErr.Line, Message: syntaxErr.Msg, Err: err}
	}
	// I/O and decompression failures surface mid-document too; they leave
	// the stream just as unusable as bad markup.
	line, _ := s.dec.InputPos()
	return &xmlload.ParseError{File: s.name, Line: line, Message: err.Error(), Err: err}
}

// Verify XMLSource implements RecordSource at compile time
var _ xmlload.RecordSource = (*XMLSource)(nil)
