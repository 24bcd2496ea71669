package scenario

import (
	"fmt"

	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/pkg/utils"
)

// LogSink writes collector events to a logger at debug level, one line per
// event.
type LogSink struct {
	log utils.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log utils.Logger) *LogSink {
	return &LogSink{log: log}
}

// OnEvent logs ev.
func (s *LogSink) OnEvent(ev gc.Event) {
	s.log.Debug("%s", FormatEvent(ev))
}

// FormatEvent renders ev as a single event log line.
func FormatEvent(ev gc.Event) string {
	switch ev.Kind {
	case gc.EventAllocate:
		return fmt.Sprintf("[ALLOCATE] obj_%d (size=%d)", ev.Object, ev.Size)
	case gc.EventMakeRoot:
		return fmt.Sprintf("[MAKE_ROOT] obj_%d (rc=%d)", ev.Object, ev.RefAfter)
	case gc.EventRemoveRoot:
		return fmt.Sprintf("[REMOVE_ROOT] obj_%d (rc=%d)", ev.Object, ev.RefAfter)
	case gc.EventAddRef:
		return fmt.Sprintf("[ADD_REF] obj_%d -> obj_%d (rc=%d)", ev.Object, ev.Target, ev.RefAfter)
	case gc.EventRemoveRef:
		return fmt.Sprintf("[REMOVE_REF] obj_%d -> obj_%d (rc=%d)", ev.Object, ev.Target, ev.RefAfter)
	case gc.EventDecrement:
		return fmt.Sprintf("[DECREMENT] obj_%d (rc %d -> %d)", ev.Object, ev.RefBefore, ev.RefAfter)
	case gc.EventFree:
		return fmt.Sprintf("[DELETE] obj_%d (freed %d bytes)", ev.Object, ev.FreedBytes)
	case gc.EventMark:
		return fmt.Sprintf("[MARK] obj_%d", ev.Object)
	case gc.EventCollectStart:
		return "[COLLECTION_START]"
	case gc.EventCollectEnd:
		return fmt.Sprintf("[COLLECTION_END] freed %d objects, %d bytes", ev.FreedObjects, ev.FreedBytes)
	default:
		return fmt.Sprintf("[%s] obj_%d", ev.Kind, ev.Object)
	}
}
