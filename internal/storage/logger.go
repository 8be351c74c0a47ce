package storage

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// badgerLogger routes badger's printf-style logging into zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func msg(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msg(msg(format, args))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msg(msg(format, args))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Info().Msg(msg(format, args))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msg(msg(format, args))
}
