package kernel

// Error describes a kernel error. Kernel errors are declared as package-level
// pointers to Error values: they are returned from code that runs before any
// heap is available and from interrupt handlers, so errors.New and fmt.Errorf
// cannot be used to build them.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
