package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

// service tags every log line so aggregated streams stay attributable.
const service = "bonum-api"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared line-oriented logger; LogRequest formats the
// structured entries that go through it.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest emits one JSON log line, stamped with the service name unless
// the entry already carries one.
func LogRequest(entry map[string]any) {
	Logger().Println(formatEntry(entry))
}

func formatEntry(entry map[string]any) string {
	if _, ok := entry["service"]; !ok {
		entry["service"] = service
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return `{"level":"error","msg":"log entry not serializable","service":"` + service + `"}`
	}
	return string(data)
}
