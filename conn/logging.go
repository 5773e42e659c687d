package conn

import (
	"fmt"
	"strings"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// WirePahoLogging routes the paho library's internal log output through
// the given logger: critical and error lines at error level, warnings at
// warn level. Debug output stays discarded; it is very chatty and the
// manager logs its own lifecycle events.
//
// The paho loggers are package-level, so this applies to every client in
// the process. Call it once at startup.
func WirePahoLogging(log Logger) {
	pahomqtt.CRITICAL = pahoLogAdapter{logf: log.Error}
	pahomqtt.ERROR = pahoLogAdapter{logf: log.Error}
	pahomqtt.WARN = pahoLogAdapter{logf: log.Warn}
}

// pahoLogAdapter adapts a leveled log function to paho's print-style
// Logger interface.
type pahoLogAdapter struct {
	logf func(msg string, args ...any)
}

func (a pahoLogAdapter) Println(v ...interface{}) {
	a.logf("mqtt client", "msg", strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (a pahoLogAdapter) Printf(format string, v ...interface{}) {
	a.logf("mqtt client", "msg", fmt.Sprintf(format, v...))
}
