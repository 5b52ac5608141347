package logger

// Logger is the logging surface shared by kernel and shell components.
// Implementations attach a component name so streams from the mesh, the
// API and the GUI stay distinguishable.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}
