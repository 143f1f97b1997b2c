package pipeline

import (
	"fmt"
	"strings"
	"sync"
)

// Summary is the three-counter result surfaced to the caller: how many
// errors were recorded per stage group.
type Summary struct {
	ParseErrors int
	ApplyErrors int
	EmitErrors  int
}

func (s Summary) total() int { return s.ParseErrors + s.ApplyErrors + s.EmitErrors }

// errorLog is the run's lock-free-in-spirit (mutex-guarded, in Go) append-
// only error collector. Entries preserve insertion order within their own
// bucket only, per the accumulator's ordering guarantee.
type errorLog struct {
	mu    sync.Mutex
	parse []string
	apply []string
	emit  []string
}

func (l *errorLog) addParse(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.parse = append(l.parse, err.Error())
}

func (l *errorLog) addApply(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.apply = append(l.apply, err.Error())
}

func (l *errorLog) addEmit(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emit = append(l.emit, err.Error())
}

func (l *errorLog) summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summary{ParseErrors: len(l.parse), ApplyErrors: len(l.apply), EmitErrors: len(l.emit)}
}

// render produces the textual log body written to d_merge_errors.log: one
// paragraph per error, grouped by stage.
func (l *errorLog) render() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	writeGroup := func(name string, entries []string) {
		for _, e := range entries {
			fmt.Fprintf(&b, "[%s] %s\n\n", name, e)
		}
	}
	writeGroup("parse", l.parse)
	writeGroup("apply", l.apply)
	writeGroup("emit", l.emit)
	return b.String()
}
