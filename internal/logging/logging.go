package logging

import "github.com/sirupsen/logrus"

// New builds the process logger: plain text with full timestamps, since the
// daemon's log stream is its primary output. Unknown levels fall back to
// info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}
