package leapdata

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testIETFDoc = `#	test bulletin
#$	3676924800
#@	4907404800
2272060800	10	# 1 Jan 1972
2287785600	11	# 1 Jul 1972
2303683200	12	# 1 Jan 1973
`

const testTZDataDoc = `# tzdata leap second table
#expires 1782604800

Leap	1972	Jun	30	23:59:60	+	S
Leap	1972	Dec	31	23:59:60	+	S
`

func TestParseIETF(t *testing.T) {
	assert := require.New(t)

	table, err := Parse(strings.NewReader(testIETFDoc), "test")
	assert.NoError(err)

	assert.Equal("test", table.Source)
	assert.Equal(time.Unix(4907404800-ntpUnixDelta, 0).UTC(), table.Expires)

	// the first data row is bookkeeping, not a leap second
	assert.Equal([]Event{
		{Unix: 78796800, Offset: 11},  // 1972-07-01
		{Unix: 94694400, Offset: 12},  // 1973-01-01
	}, table.Events)
}

func TestParseTZData(t *testing.T) {
	assert := require.New(t)

	table, err := Parse(strings.NewReader(testTZDataDoc), "test")
	assert.NoError(err)

	assert.Equal(time.Unix(1782604800, 0).UTC(), table.Expires)
	assert.Equal([]Event{
		{Unix: 78796800, Offset: 11},
		{Unix: 94694400, Offset: 12},
	}, table.Events)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		Name string
		Doc  string
	}{
		{
			Name: "no expiry header",
			Doc:  "2272060800\t10\n2287785600\t11\n",
		},
		{
			Name: "no events",
			Doc:  "#@\t4907404800\n",
		},
		{
			Name: "invalid expiry header",
			Doc:  "#@\tnot-a-number\n2272060800\t10\n",
		},
		{
			Name: "invalid instant",
			Doc:  "#@\t4907404800\nnot-a-number\t10\n",
		},
		{
			Name: "invalid offset",
			Doc:  "#@\t4907404800\n2272060800\tten\n",
		},
		{
			Name: "negative correction",
			Doc:  "#expires 1782604800\nLeap\t1972\tJun\t30\t23:59:59\t-\tS\n",
		},
		{
			Name: "instants not increasing",
			Doc:  "#@\t4907404800\n2272060800\t10\n2303683200\t11\n2287785600\t12\n",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			assert := require.New(t)

			_, err := Parse(strings.NewReader(test.Doc), "test")
			assert.Error(err)

			var parseErr *ParseError
			assert.True(errors.As(err, &parseErr))
			assert.Equal("test", parseErr.Source)
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	assert := require.New(t)

	_, err := ParseFile("/does/not/exist/leap-seconds.list")
	assert.Error(err)
	assert.True(errors.Is(err, os.ErrNotExist))
}

func TestExpired(t *testing.T) {
	assert := require.New(t)

	table, err := Parse(strings.NewReader(testIETFDoc), "test")
	assert.NoError(err)

	assert.False(table.Expired(table.Expires.Add(-time.Second)))
	// the expiry instant itself is no longer trusted
	assert.True(table.Expired(table.Expires))
	assert.True(table.Expired(table.Expires.Add(time.Second)))
}

func TestPackaged(t *testing.T) {
	assert := require.New(t)

	table, err := Packaged()
	assert.NoError(err)
	assert.Equal("packaged", table.Source)
	assert.NotEmpty(table.Events)

	// 28 bulletin rows, minus the bookkeeping row
	assert.Len(table.Events, 27)
	assert.Equal(int64(78796800), table.Events[0].Unix)
	assert.Equal(11, table.Events[0].Offset)
	assert.Equal(int64(1483228800), table.Events[len(table.Events)-1].Unix) // 2017-01-01
	assert.Equal(37, table.Events[len(table.Events)-1].Offset)
}
