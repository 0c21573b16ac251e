package source

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

const votesXML = `<?xml version="1.0" encoding="utf-8"?>
<votes>
  <row Id="1" PostId="10" VoteTypeId="2" CreationDate="2020-01-01T00:00:00.000" />
  <row Id="2" PostId="11" VoteTypeId="3" CreationDate="2020-01-02T00:00:00.000" />
  <row Id="3" PostId="12" CreationDate="2020-01-03T00:00:00.000" />
</votes>
`

func drain(t *testing.T, src xmlload.RecordSource) ([]xmlload.Record, error) {
	t.Helper()
	var records []xmlload.Record
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

func TestXMLSource_YieldsOneRecordPerRow(t *testing.T) {
	records, err := drain(t, NewXMLSource(strings.NewReader(votesXML), "Votes.xml"))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, xmlload.Record{
		"Id":           "1",
		"PostId":       "10",
		"VoteTypeId":   "2",
		"CreationDate": "2020-01-01T00:00:00.000",
	}, records[0])
}

func TestXMLSource_AbsentAttributeIsMissing(t *testing.T) {
	records, err := drain(t, NewXMLSource(strings.NewReader(votesXML), ""))
	require.NoError(t, err)

	_, ok := records[2]["VoteTypeId"]
	assert.False(t, ok, "absent attribute must not appear in the record")
}

func TestXMLSource_DecodesEntitiesVerbatim(t *testing.T) {
	doc := `<posts><row Id="7" Body="&lt;p&gt;Hello &amp; welcome&lt;/p&gt;" Title="  spaced  " /></posts>`
	records, err := drain(t, NewXMLSource(strings.NewReader(doc), ""))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "<p>Hello & welcome</p>", records[0]["Body"])
	assert.Equal(t, "  spaced  ", records[0]["Title"])
}

func TestXMLSource_IgnoresNonRowElements(t *testing.T) {
	doc := `<users><!-- export --><meta generated="today"/><row Id="1"/><row Id="2"></row></users>`
	records, err := drain(t, NewXMLSource(strings.NewReader(doc), ""))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestXMLSource_EmptyRootElement(t *testing.T) {
	records, err := drain(t, NewXMLSource(strings.NewReader("<tags></tags>"), ""))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = drain(t, NewXMLSource(strings.NewReader("\ufeff<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<tags>\n  <row Id=\"1\" />\n</tags>\n<!-- end -->\n"), ""))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestXMLSource_RejectsIllFormedDocuments(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		records int
		message string
	}{
		{"empty file", "", 0, "no element found"},
		{"prolog only", `<?xml version="1.0" encoding="utf-8"?>`, 0, "no element found"},
		{"text after root", `<votes><row Id="1" /></votes>garbage`, 1, "junk after document element"},
		{"second root", `<votes><row Id="1" /></votes><votes><row Id="2" /></votes>`, 1, "junk after document element"},
		{"text before root", `garbage<votes><row Id="1" /></votes>`, 0, "text before document element"},
		{"duplicate attribute", `<votes><row Id="1" Id="2" /></votes>`, 0, `duplicate attribute "Id"`},
		{"duplicate attribute on root", `<votes a="1" a="2"><row Id="1" /></votes>`, 0, `duplicate attribute "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := drain(t, NewXMLSource(strings.NewReader(tt.doc), "Votes.xml"))
			assert.Len(t, records, tt.records)
			require.Error(t, err)
			assert.True(t, errors.Is(err, xmlload.ErrParse))

			var parseErr *xmlload.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.message, parseErr.Message)
			assert.Equal(t, "Votes.xml", parseErr.File)
		})
	}
}

func TestXMLSource_MalformedAfterRows(t *testing.T) {
	doc := `<votes>
  <row Id="1" PostId="10" />
  <row Id="2" PostId="11" />
  <row Id="3" PostId=12 />
</votes>`
	src := NewXMLSource(strings.NewReader(doc), "Votes.xml")

	records, err := drain(t, src)
	assert.Len(t, records, 2)
	require.Error(t, err)

	var parseErr *xmlload.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "Votes.xml", parseErr.File)
	assert.Equal(t, 4, parseErr.Line)
	assert.True(t, errors.Is(err, xmlload.ErrParse))

	_, again := src.Next()
	assert.Equal(t, err, again, "error must be sticky")
}

func TestXMLSource_TruncatedDocument(t *testing.T) {
	doc := `<votes>
  <row Id="1" PostId="10" />
  <row Id="2" PostId="11" />`
	records, err := drain(t, NewXMLSource(strings.NewReader(doc), "Votes.xml"))
	assert.Len(t, records, 2)
	assert.True(t, errors.Is(err, xmlload.ErrParse), "truncated document must be a parse error, got %v", err)
}

func TestXMLSource_MismatchedTags(t *testing.T) {
	doc := `<votes><row Id="1"></votes>`
	_, err := drain(t, NewXMLSource(strings.NewReader(doc), ""))
	assert.True(t, errors.Is(err, xmlload.ErrParse))
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestXMLSource_ReadErrorBecomesParseError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader(`<votes><row Id="1"/>`), failingReader{err: boom})

	records, err := drain(t, NewXMLSource(r, "Votes.xml"))
	assert.Len(t, records, 1)
	assert.True(t, errors.Is(err, xmlload.ErrParse))
	assert.True(t, errors.Is(err, boom))
}

func TestXMLSource_Latin1Declaration(t *testing.T) {
	// 0xE9 is é in ISO-8859-1.
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><users><row Id=\"1\" DisplayName=\"Ren\xe9\"/></users>"
	records, err := drain(t, NewXMLSource(strings.NewReader(doc), ""))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "René", records[0]["DisplayName"])
}
