package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-bank/internal/model"
)

func TestLoad(t *testing.T) {
	input := `# account other amount mode
0 0 100 0
0 0 30 1
0 1 50 2   # transfer
3 0 0
3
0 0 0 4
`
	records, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []model.TransactionRecord{
		{Account: 0, Other: 0, Amount: 100, Mode: model.Deposit, SequenceID: 0},
		{Account: 0, Other: 0, Amount: 30, Mode: model.Withdraw, SequenceID: 1},
		{Account: 0, Other: 1, Amount: 50, Mode: model.Transfer, SequenceID: 2},
		{Account: 3, Other: 0, Amount: 0, Mode: model.CheckBalance, SequenceID: 3},
		{Account: 0, Other: 0, Amount: 0, Mode: model.PrintLog, SequenceID: 4},
	}, records)
}

func TestLoad_NegativeAndTrailing(t *testing.T) {
	records, err := Load(strings.NewReader("1 2 -40 1\n5 6 7"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(-40), records[0].Amount)
}

func TestLoad_InvalidToken(t *testing.T) {
	_, err := Load(strings.NewReader("0 0 10 0\n0 x 10 0\n"))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "x", perr.Token)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	records := []model.TransactionRecord{
		{Account: 1, Amount: 20, Mode: model.Deposit},
		{Account: 1, Other: 2, Amount: 5, Mode: model.Transfer, SequenceID: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))
	assert.Equal(t, "1 0 20 0\n1 2 5 2\n", buf.String())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
