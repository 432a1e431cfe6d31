// Package analysis implements the memoizing analysis framework and the
// individual circuit analyses: connected components, component validity,
// reachability, ownership issues, scheduled order, value liveness and
// register allocation.
//
// Results are cached by analysis identity and shared by reference: callers
// and dependent analyses must treat them as read-only. Optimizer passes
// invalidate the cache explicitly after structural rewrites.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fhelium/fhelium/circuit"
)

// Key names an analysis. One cache entry exists per key.
type Key string

const (
	KeyComponents   Key = "connected-components"
	KeyValidity     Key = "component-validity"
	KeyReachability Key = "reachability"
	KeyOwnership    Key = "ownership-issues"
	KeyOrder        Key = "scheduled-order"
	KeyLiveness     Key = "liveness"
	KeyRegisters    Key = "register-allocation"
	KeyLinearScan   Key = "linear-scan-allocation"
)

// ErrMissingResult is returned when a cached result exists under a key but
// has an unexpected type; it indicates two analyses sharing a key.
var ErrMissingResult = errors.New("analysis: cached result has wrong type")

// Analysis computes a result of type T over a circuit. Run may request other
// analyses through the analyzer; recursion among analyses is a programmer
// error and is not detected at runtime.
type Analysis[T any] interface {
	AnalysisKey() Key
	Run(a *Analyzer, c *circuit.Circuit) (T, error)
}

// Analyzer memoizes analysis results for one circuit. It is single-owner and
// performs no locking; an optimizer pipeline and its scheduler share one
// analyzer to avoid recomputation.
type Analyzer struct {
	cache map[Key]any
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{cache: make(map[Key]any)}
}

// Get returns the cached result for an analysis, computing and caching it on
// first request. The result is shared; callers must not mutate it.
func Get[T any](a *Analyzer, c *circuit.Circuit, an Analysis[T]) (T, error) {
	var zero T
	if cached, ok := a.cache[an.AnalysisKey()]; ok {
		r, ok := cached.(T)
		if !ok {
			return zero, fmt.Errorf("%w: key %q", ErrMissingResult, an.AnalysisKey())
		}
		return r, nil
	}
	r, err := an.Run(a, c)
	if err != nil {
		return zero, fmt.Errorf("analysis %q: %w", an.AnalysisKey(), err)
	}
	a.cache[an.AnalysisKey()] = r
	return r, nil
}

// InvalidateAll clears every cached result.
func (a *Analyzer) InvalidateAll() {
	clear(a.cache)
}

// InvalidateExcept clears every cached result except those named in keep.
// Passes call this with the analyses they promise not to disturb; the
// promise is a load-bearing contract verified by tests, not by types.
func (a *Analyzer) InvalidateExcept(keep ...Key) {
	kept := make(map[Key]struct{}, len(keep))
	for _, k := range keep {
		kept[k] = struct{}{}
	}
	for k := range a.cache {
		if _, ok := kept[k]; !ok {
			delete(a.cache, k)
		}
	}
}

// Cached reports which keys currently hold results, for logging.
func (a *Analyzer) Cached() string {
	keys := make([]string, 0, len(a.cache))
	for k := range a.cache {
		keys = append(keys, string(k))
	}
	return strings.Join(keys, ",")
}
