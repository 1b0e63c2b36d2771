package log

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/YLonely/rammer"
	"github.com/sirupsen/logrus"
)

type logItem struct {
	component rammer.Component
	method    string
}

var (
	mu      sync.Mutex
	loggers = map[logItem]*logrus.Entry{}
)

// Setup sends logs to stderr so they never mix with command output.
func Setup(debug bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

func Logger(c rammer.Component, method string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()
	item := logItem{
		component: c,
		method:    method,
	}
	logger, exists := loggers[item]
	if !exists {
		logger = logrus.WithFields(logrus.Fields{
			"component": c.String(),
			"method":    method,
		})
		loggers[item] = logger
	}
	return logger
}

// WithInterface adds value to entry under key as a single JSON field, or in
// its %+v form if it can't be encoded.
func WithInterface(entry *logrus.Entry, key string, value interface{}) *logrus.Entry {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return entry.WithField(key, fmt.Sprintf("%+v", value))
	}
	return entry.WithField(key, string(valueJSON))
}
