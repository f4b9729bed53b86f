package dataset

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ads-report/internal/model"
)

func collect(t *testing.T, input string, opts CSVOptions) ([]string, [][]string, error) {
	t.Helper()
	var header []string
	var rows [][]string
	_, err := Scan(context.Background(), strings.NewReader(input), opts,
		func(h []string) error {
			header = h
			return nil
		},
		func(r []string) error {
			rows = append(rows, append([]string(nil), r...))
			return nil
		},
	)
	return header, rows, err
}

func TestScan_Basic(t *testing.T) {
	header, rows, err := collect(t, "a,b,c\n1,2,3\n4,5\n", CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"4", "5"}, rows[1])
}

func TestScan_StripsBOM(t *testing.T) {
	header, _, err := collect(t, "\ufeffstatus,ip\nphishing,1\n", CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "status", header[0])
}

func TestScan_Delimiter(t *testing.T) {
	header, rows, err := collect(t, "a;b\n1;2\n", CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, header)
	assert.Equal(t, [][]string{{"1", "2"}}, rows)
}

func TestScan_Empty(t *testing.T) {
	_, _, err := collect(t, "", CSVOptions{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestScan_HeaderErrorStopsBeforeRows(t *testing.T) {
	sentinel := errors.New("bad header")
	rowsSeen := 0
	_, err := Scan(context.Background(), strings.NewReader("a\n1\n2\n"), CSVOptions{},
		func([]string) error { return sentinel },
		func([]string) error {
			rowsSeen++
			return nil
		},
	)
	assert.ErrorIs(t, err, sentinel)
	assert.Zero(t, rowsSeen)
}

func TestScan_ContextCancelled(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("a,b\n")
	for range 1000 {
		sb.WriteString("1,2\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	_, err := Scan(ctx, strings.NewReader(sb.String()), CSVOptions{},
		func([]string) error { return nil },
		func([]string) error {
			seen++
			if seen == 10 {
				cancel()
			}
			return nil
		},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, seen)
}

func TestScan_SkipsMalformedRows(t *testing.T) {
	input := "status,predicted_status,length_url,ip,nb_dots\n" +
		"phishing,phishing,10,0,1\n" +
		"legitimate,legitimate,4\"0,0,1\n" +
		"legitimate,legitimate,30,0,2\n"

	var rows [][]string
	malformed, err := Scan(context.Background(), strings.NewReader(input), CSVOptions{},
		func([]string) error { return nil },
		func(r []string) error {
			rows = append(rows, append([]string(nil), r...))
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
	require.Len(t, rows, 2)
	assert.Equal(t, "10", rows[0][2])
	assert.Equal(t, "30", rows[1][2])
}

func TestScan_MalformedHeaderIsFatal(t *testing.T) {
	_, _, err := collect(t, "sta\"tus,ip\nphishing,1\n", CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read header")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestScan_ReadErrorIsFatal(t *testing.T) {
	r := io.MultiReader(strings.NewReader("a,b\n1,2\n"), failingReader{})
	_, err := Scan(context.Background(), r, CSVOptions{},
		func([]string) error { return nil },
		func([]string) error { return nil },
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSource() Source {
	return Source{Columns: DefaultColumns(), Labels: model.DefaultLabelSet()}
}

func TestLoad_FoldsValidRowsInOrder(t *testing.T) {
	path := writeCSV(t, "url,length_url,ip,nb_dots,status,predicted_status\n"+
		"a,10,0,1,legitimate,legitimate\n"+
		"b,20,1,2,unknown,phishing\n"+
		"c,30,1,3,Phishing,phishing\n")

	var lengths []float64
	stats, err := Load(context.Background(), path, testSource(), func(r model.ClassifiedRecord) {
		lengths = append(lengths, r.Length)
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 30}, lengths)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Valid)
	assert.Equal(t, 1, stats.SkippedLabel)
}

func TestLoad_CountsMalformedRows(t *testing.T) {
	path := writeCSV(t, "status,predicted_status,length_url,ip,nb_dots\n"+
		"phishing,phishing,10,0,1\n"+
		"legitimate,legitimate,4\"0,0,1\n"+
		"legitimate,phishing,30,0,2\n")

	n := 0
	stats, err := Load(context.Background(), path, testSource(), func(model.ClassifiedRecord) { n++ })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 2, stats.Valid)
	assert.Equal(t, 1, stats.MalformedRows)
}

func TestLoad_SchemaErrorBeforeRows(t *testing.T) {
	path := writeCSV(t, "status,length_url,ip,nb_dots\nphishing,1,0,1\n")

	called := false
	_, err := Load(context.Background(), path, testSource(), func(model.ClassifiedRecord) { called = true })
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"predicted_status"}, se.Columns())
	assert.False(t, called)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), testSource(), func(model.ClassifiedRecord) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open csv")
}
