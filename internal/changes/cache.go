package changes

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CacheFile stores the last comparison result. Purely a convenience for
// repeated local invocations; core correctness never depends on it.
const CacheFile = ".monoctl-changes.json"

// LoadCached returns the previously stored result, if any.
func LoadCached(rootDir string) (Result, bool) {
	data, err := os.ReadFile(filepath.Join(rootDir, CacheFile))
	if err != nil {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, false
	}
	return res, true
}

// StoreCached persists the comparison result for the next invocation.
func StoreCached(rootDir string, res Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(rootDir, CacheFile), data, 0o644)
}
