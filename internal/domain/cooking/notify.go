package cooking

import "recipe-share-go/pkg/logger"

// Notifier receives timer completions. The callback runs outside the timer's
// lock and outside its state machine; implementations own any fan-out to
// push channels.
type Notifier interface {
	TimerFinished(sessionID string, step int)
}

type logNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) TimerFinished(sessionID string, step int) {
	n.log.Info("step timer finished", "session_id", sessionID, "step", step)
}
