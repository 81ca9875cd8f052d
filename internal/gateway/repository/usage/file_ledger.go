package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codemorph/internal/llm"
)

// FileLedger keeps daily totals in a single JSON file. The file is rewritten
// atomically on every record.
type FileLedger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

type ledgerFile struct {
	UpdatedAt string               `json:"updated_at"`
	Days      map[string]ledgerDay `json:"days"`
}

type ledgerDay struct {
	Requests      int64                 `json:"requests"`
	Errors        int64                 `json:"errors"`
	PromptBytes   int64                 `json:"prompt_bytes"`
	ResponseBytes int64                 `json:"response_bytes"`
	Models        map[string]ledgerStat `json:"models"`
}

type ledgerStat struct {
	Requests      int64 `json:"requests"`
	Errors        int64 `json:"errors"`
	PromptBytes   int64 `json:"prompt_bytes"`
	ResponseBytes int64 `json:"response_bytes"`
}

func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path, now: time.Now}
}

func (l *FileLedger) Record(_ context.Context, rec llm.UsageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.read()
	if err != nil {
		return err
	}
	at := rec.At
	if at.IsZero() {
		at = l.now()
	}
	dayKey := at.UTC().Format(dayLayout)

	d := f.Days[dayKey]
	if d.Models == nil {
		d.Models = map[string]ledgerStat{}
	}
	m := d.Models[rec.Model]
	d.Requests++
	m.Requests++
	d.PromptBytes += int64(rec.PromptBytes)
	m.PromptBytes += int64(rec.PromptBytes)
	d.ResponseBytes += int64(rec.ResponseBytes)
	m.ResponseBytes += int64(rec.ResponseBytes)
	if rec.Failed {
		d.Errors++
		m.Errors++
	}
	d.Models[rec.Model] = m
	f.Days[dayKey] = d
	f.UpdatedAt = l.now().UTC().Format(time.RFC3339)

	return l.write(f)
}

func (l *FileLedger) Daily(context.Context) ([]DayStat, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.read()
	if err != nil {
		return nil, err
	}
	var out []DayStat
	for day, d := range f.Days {
		for model, m := range d.Models {
			out = append(out, DayStat{
				Day:           day,
				Model:         model,
				Requests:      m.Requests,
				Errors:        m.Errors,
				PromptBytes:   m.PromptBytes,
				ResponseBytes: m.ResponseBytes,
			})
		}
	}
	sortStats(out)
	return out, nil
}

func (l *FileLedger) Close() error { return nil }

func (l *FileLedger) read() (ledgerFile, error) {
	f := ledgerFile{Days: map[string]ledgerDay{}}
	b, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read usage ledger: %w", err)
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("decode usage ledger: %w", err)
	}
	if f.Days == nil {
		f.Days = map[string]ledgerDay{}
	}
	return f, nil
}

func (l *FileLedger) write(f ledgerFile) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create usage ledger dir: %w", err)
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write usage ledger: %w", err)
	}
	return os.Rename(tmp, l.path)
}
