package volume

import "log"

// LogNotifier writes significant-volume events to a logger.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

// SignificantVolume logs the event.
func (n *LogNotifier) SignificantVolume(pool string, buyVolume, sellVolume float64) {
	n.logger.Printf("significant volume on %s: buy=%.4f SOL sell=%.4f SOL", pool, buyVolume, sellVolume)
}

var _ Notifier = (*LogNotifier)(nil)
