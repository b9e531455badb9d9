package ebb

import "reflect"

// initializer is implemented by every port type (Receiver, Sender,
// Broadcaster) via a pointer receiver. Build walks a freshly zeroed Ports
// struct and calls initPort on every field that implements it, which is
// the runtime stand-in for the compile-time port-factory registration a
// macro-based derive would otherwise generate.
type initializer interface {
	initPort(cfg *NetworkConfig)
}

// closer is implemented by port types that need to release a resource (a
// Receiver's Channel, or a Sender/Broadcaster's bound producer slot) once
// the process that owns them finishes.
type closer interface {
	closePort()
}

// Build constructs a fresh Ports value of type P, initializing every field
// that is a Receiver, Sender or Broadcaster. P must be a struct type;
// passing anything else panics, since a process's port bundle is always a
// plain struct of port fields by convention.
func Build[P any](cfg *NetworkConfig) P {
	var ports P
	v := reflect.ValueOf(&ports).Elem()
	if v.Kind() != reflect.Struct {
		panic("ebb: Build requires a struct Ports type")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		if !f.CanAddr() {
			continue
		}
		if init, ok := f.Addr().Interface().(initializer); ok {
			init.initPort(cfg)
		}
	}
	return ports
}

// HandleOf derives a Handle value of type H from a built Ports value of
// type P, by matching fields of the same name and calling each port's
// Handle method. A process's Ports struct and its exported Handle struct
// are expected to name their corresponding fields identically; any Handle
// field with no same-named Ports field, or whose port has no Handle
// method, is left at its zero value.
func HandleOf[H any, P any](ports P) H {
	var handle H
	hv := reflect.ValueOf(&handle).Elem()
	if hv.Kind() != reflect.Struct {
		panic("ebb: HandleOf requires a struct Handle type")
	}
	pv := reflect.ValueOf(&ports).Elem()
	ht := hv.Type()
	for i := 0; i < ht.NumField(); i++ {
		name := ht.Field(i).Name
		pf := pv.FieldByName(name)
		if !pf.IsValid() || !pf.CanAddr() {
			continue
		}
		m := pf.Addr().MethodByName("Handle")
		if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
			continue
		}
		out := m.Call(nil)[0]
		if out.Type().AssignableTo(hv.Field(i).Type()) {
			hv.Field(i).Set(out)
		}
	}
	return handle
}

// Release runs the cleanup hook on every port field of a Ports value that
// implements closer. It is called automatically once a process's driving
// task returns, modelling the point at which Rust would drop the Ports
// struct and run each field's Drop impl.
func Release[P any](ports P) {
	v := reflect.ValueOf(&ports).Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		if !f.CanAddr() {
			continue
		}
		if c, ok := f.Addr().Interface().(closer); ok {
			c.closePort()
		}
	}
}
