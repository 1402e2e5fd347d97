package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// family is one named metric in the text exposition: a counter or gauge
// keyed by its rendered label set. A family with no label names holds a
// single unlabelled sample under the "" key.
type family struct {
	name   string
	help   string
	kind   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

func newCounter(name, help string, labels ...string) *family {
	return &family{name: name, help: help, kind: "counter", labels: labels, values: map[string]float64{}}
}

func newGauge(name, help string, labels ...string) *family {
	return &family{name: name, help: help, kind: "gauge", labels: labels, values: map[string]float64{}}
}

func (f *family) add(delta float64, labelValues ...string) {
	key := labelString(f.labels, labelValues)
	f.mu.Lock()
	f.values[key] += delta
	f.mu.Unlock()
}

func (f *family) set(v float64, labelValues ...string) {
	key := labelString(f.labels, labelValues)
	f.mu.Lock()
	f.values[key] = v
	f.mu.Unlock()
}

func (f *family) value(labelValues ...string) float64 {
	key := labelString(f.labels, labelValues)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[key]
}

func (f *family) writeTo(w io.Writer) error {
	if err := writeHeader(w, f.name, f.help, f.kind); err != nil {
		return err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.labels) == 0 && len(f.values) == 0 {
		_, err := fmt.Fprintf(w, "%s 0\n", f.name)
		return err
	}
	for _, k := range sortedKeys(f.values) {
		if _, err := fmt.Fprintf(w, "%s%s %s\n", f.name, k, formatValue(f.values[k])); err != nil {
			return err
		}
	}
	return nil
}

// latency is a labelled histogram with fixed upper bounds.
type latency struct {
	name   string
	help   string
	labels []string
	bounds []float64

	mu     sync.Mutex
	series map[string]*buckets
}

type buckets struct {
	counts []uint64 // cumulative, one per bound
	sum    float64
	total  uint64
}

func newLatency(name, help string, bounds []float64, labels ...string) *latency {
	return &latency{name: name, help: help, labels: labels, bounds: bounds, series: map[string]*buckets{}}
}

func (l *latency) observe(v float64, labelValues ...string) {
	key := labelString(l.labels, labelValues)
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.series[key]
	if !ok {
		b = &buckets{counts: make([]uint64, len(l.bounds))}
		l.series[key] = b
	}
	b.sum += v
	b.total++
	for i, bound := range l.bounds {
		if v <= bound {
			b.counts[i]++
		}
	}
}

func (l *latency) writeTo(w io.Writer) error {
	if err := writeHeader(w, l.name, l.help, "histogram"); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range sortedKeys(l.series) {
		b := l.series[k]
		for i, bound := range l.bounds {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", l.name, withLe(k, formatValue(bound)), b.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %s\n%s_count%s %d\n",
			l.name, withLe(k, "+Inf"), b.total,
			l.name, k, formatValue(b.sum),
			l.name, k, b.total); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, name, help, kind string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// labelString renders {a="x",b="y"}. Missing values read "unknown".
func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		parts[i] = name + `="` + escapeLabel(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string {
	return labelEscaper.Replace(v)
}

func withLe(labels, le string) string {
	if labels == "" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(labels, "}") + `,le="` + le + `"}`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
