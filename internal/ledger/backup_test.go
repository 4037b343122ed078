package ledger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.jsonl")
	b := NewBackup(path)

	require.NoError(t, b.Append(rec("t1", "GGAL", SideBuy, StatusFilled, 10, 100, time.Now())))
	require.NoError(t, b.Append(rec("t2", "GGAL", SideSell, StatusBlocked, 10, 100, time.Now())))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		ids = append(ids, r.TradeID)
	}
	assert.Equal(t, []string{"t1", "t2"}, ids)
}
