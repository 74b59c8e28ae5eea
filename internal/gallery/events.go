package gallery

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a gallery progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}
