package jsonl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/listingmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsFixture = `{"product_name":"Sony_Cyber-shot_DSC-W310","manufacturer":"Sony","model":"DSC-W310","family":"Cyber-shot","announced-date":"2010-01-06T19:00:00.000-05:00"}
{"product_name":"Samsung_TL240","manufacturer":"Samsung","model":"TL240","announced-date":"2010-01-05T19:00:00.000-05:00"}
not json at all
{"product_name":"Nikon_D300","manufacturer":"Nikon","model":"D300","family":"DSLR","announced-date":"2007-08-22T20:00:00.000-04:00"}
`

func TestReadRecords(t *testing.T) {
	t.Run("decodes lines in order and drops malformed ones", func(t *testing.T) {
		var dropped []int
		products, stats, err := ReadRecords[domain.Product](strings.NewReader(productsFixture), func(line int, err error) {
			dropped = append(dropped, line)
		})
		require.NoError(t, err)

		require.Len(t, products, 3)
		assert.Equal(t, "Sony_Cyber-shot_DSC-W310", products[0].ProductName)
		assert.Equal(t, "Cyber-shot", products[0].Family)
		assert.Equal(t, "2010-01-06T19:00:00.000-05:00", products[0].AnnouncedDate)
		assert.Equal(t, "", products[1].Family)
		assert.Equal(t, "Nikon_D300", products[2].ProductName)

		assert.Equal(t, []int{3}, dropped)
		assert.Equal(t, domain.LoadStats{Lines: 4, Dropped: 1}, stats)
	})

	t.Run("drops records with wrong field types", func(t *testing.T) {
		input := `{"title":"Canon EOS","manufacturer":"Canon","currency":"USD","price":599.99}
{"title":"Nikon D90","manufacturer":"Nikon","currency":"CAD","price":"899.00"}
`
		listings, stats, err := ReadRecords[domain.Listing](strings.NewReader(input), nil)
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, "899.00", listings[0].Price)
		assert.Equal(t, 1, stats.Dropped)
	})

	t.Run("drops records failing validation", func(t *testing.T) {
		input := `{"manufacturer":"Canon","currency":"USD","price":"1"}
{"title":"","price":"2"}
null
[1,2]
`
		listings, stats, err := ReadRecords[domain.Listing](strings.NewReader(input), nil)
		require.NoError(t, err)
		assert.Empty(t, listings)
		assert.Equal(t, 4, stats.Dropped)
	})

	t.Run("reports products with an empty name as dropped", func(t *testing.T) {
		input := `{"product_name":"","manufacturer":"Canon","model":"400D","family":"EOS"}
{"product_name":"Canon_EOS_400D","manufacturer":"Canon","model":"400D","family":"EOS"}
`
		var dropped []int
		var reasons []string
		products, stats, err := ReadRecords[domain.Product](strings.NewReader(input), func(line int, err error) {
			dropped = append(dropped, line)
			reasons = append(reasons, err.Error())
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Canon_EOS_400D", products[0].ProductName)
		assert.Equal(t, domain.LoadStats{Lines: 2, Dropped: 1}, stats)
		assert.Equal(t, []int{1}, dropped)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "product_name is required")
	})

	t.Run("skips blank lines and tolerates CRLF and missing final newline", func(t *testing.T) {
		input := "{\"title\":\"a\"}\r\n\r\n   \n{\"title\":\"b\"}"
		listings, stats, err := ReadRecords[domain.Listing](strings.NewReader(input), nil)
		require.NoError(t, err)
		require.Len(t, listings, 2)
		assert.Equal(t, "b", listings[1].Title)
		assert.Equal(t, domain.LoadStats{Lines: 2}, stats)
	})

	t.Run("passes duplicates through", func(t *testing.T) {
		line := `{"title":"dup"}` + "\n"
		listings, _, err := ReadRecords[domain.Listing](strings.NewReader(line+line), nil)
		require.NoError(t, err)
		assert.Len(t, listings, 2)
	})

	t.Run("handles lines longer than a scanner buffer", func(t *testing.T) {
		long := strings.Repeat("x", 200*1024)
		listings, _, err := ReadRecords[domain.Listing](strings.NewReader(`{"title":"`+long+`"}`), nil)
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Len(t, listings[0].Title, len(long))
	})

	t.Run("reader failure is a source error", func(t *testing.T) {
		_, _, err := ReadRecords[domain.Listing](failingReader{}, nil)
		assert.ErrorIs(t, err, domain.ErrSourceUnreadable)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

type unencodable struct {
	Ch chan int `json:"ch"`
}

func TestWriteRecords(t *testing.T) {
	t.Run("writes one object per line without escaping html", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteRecords(&buf, []domain.ProductTitles{
			{ProductName: "a", Listings: []string{"Canon <new> & boxed"}},
			{ProductName: "b", Listings: []string{}},
		})
		require.NoError(t, err)

		assert.Equal(t,
			`{"product_name":"a","listings":["Canon <new> & boxed"]}`+"\n"+
				`{"product_name":"b","listings":[]}`+"\n",
			buf.String())
	})

	t.Run("serialization failure writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteRecords(&buf, []unencodable{{}})
		assert.ErrorIs(t, err, domain.ErrSerialization)
		assert.Zero(t, buf.Len())
	})
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.txt")

	products, _, err := ReadRecords[domain.Product](strings.NewReader(productsFixture), nil)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, products))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reread, stats, err := ReadRecords[domain.Product](f, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Dropped)
	assert.Equal(t, products, reread)
}

func TestWriteFile(t *testing.T) {
	t.Run("failed serialization leaves no file behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "results.txt")

		err := WriteFile(path, []unencodable{{}})
		assert.ErrorIs(t, err, domain.ErrSerialization)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("missing directory is a sink error", func(t *testing.T) {
		err := WriteFile(filepath.Join(t.TempDir(), "nope", "results.txt"), []domain.ProductResult{})
		assert.ErrorIs(t, err, domain.ErrSinkUnwritable)
	})

	t.Run("replaces an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.txt")
		require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

		require.NoError(t, WriteFile(path, []domain.ProductTitles{{ProductName: "fresh", Listings: []string{}}}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"product_name":"fresh","listings":[]}`+"\n", string(data))
	})
}
