package listquery

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

// Notifier surfaces messages to the user, e.g. as a toast.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

// Notify calls f.
func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}
