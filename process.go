package ebb

// Process describes a long-lived unit of work parameterized by its Ports
// bundle P (the struct of Receiver/Sender/Broadcaster fields it reads and
// writes) and its Handle type H (the struct of corresponding *Handle
// values exposed to the rest of the network for wiring).
//
// Execute consumes a freshly built Ports value and returns the driving
// task: a function that, once called, runs the process for its entire
// lifetime and returns only when the process is done. The network schedules
// this task on the local or shared pool depending on which Spawn variant
// was used; it never calls Execute more than once per spawn.
type Process[P any, H any] interface {
	Execute(ports P) func()
}

// ProcessFunc adapts a plain function to Process, for processes simple
// enough not to need their own named type.
type ProcessFunc[P any, H any] func(ports P) func()

func (f ProcessFunc[P, H]) Execute(ports P) func() { return f(ports) }
