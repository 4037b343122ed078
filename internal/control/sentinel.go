package control

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultSilence = time.Hour

// sentinel file names, checked in a fixed order so stop wins over pause when
// both are present.
var sentinelOrder = []Command{Stop, Restart, Pause, Resume, Silence}

// FileSentinel implements Source over plain files in a control directory:
// touching <dir>/pause pauses the bot, <dir>/stop shuts it down. The silence
// file may hold a number of minutes. Files are removed once consumed.
type FileSentinel struct {
	dir string
	now func() time.Time
}

func NewFileSentinel(dir string) *FileSentinel {
	return &FileSentinel{dir: dir, now: time.Now}
}

func (f *FileSentinel) Poll() ([]Signal, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, err
	}
	var signals []Signal
	for _, cmd := range sentinelOrder {
		path := filepath.Join(f.dir, string(cmd))
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return signals, err
		}
		sig := Signal{Command: cmd}
		if cmd == Silence {
			sig.Until = f.now().Add(parseSilence(string(data)))
		}
		if err := os.Remove(path); err != nil {
			return signals, err
		}
		signals = append(signals, sig)
	}
	return signals, nil
}

func parseSilence(content string) time.Duration {
	mins, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil || mins <= 0 {
		return defaultSilence
	}
	return time.Duration(mins) * time.Minute
}
