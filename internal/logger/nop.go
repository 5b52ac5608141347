package logger

// Nop discards all log output. Used in tests and as a safe default.
type Nop struct{}

func (Nop) Debug(component, message string, fields map[string]interface{}) {}

func (Nop) Info(component, message string, fields map[string]interface{}) {}

func (Nop) Warning(component, message string, fields map[string]interface{}) {}

func (Nop) Error(component string, err error, fields map[string]interface{}) {}
