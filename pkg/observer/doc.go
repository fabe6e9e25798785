// Package observer provides an event-driven observer pattern for compile-phase
// monitoring.
//
// # Overview
//
// The observer package lets callers track a compilation's progress without
// coupling to the compiler's internals: Build, Merge, the parameter-set and
// evaluate-commands binders, Schedule, and the isolated-node check all emit
// events through the same Observer interface.
//
// # Basic usage
//
//	mgr := observer.NewManager()
//	mgr.Register(observer.NewConsoleObserver())
//
//	mgr.Notify(ctx, observer.Event{
//		Type:          observer.EventPhaseStart,
//		Status:        observer.StatusStarted,
//		CompilationID: compilationID,
//		Phase:         "merge",
//	})
//
// # Built-in observers
//
// NoOpObserver discards every event. ConsoleObserver logs each event through
// a Logger (NewDefaultLogger by default, or any caller-supplied
// implementation of the Logger interface).
//
// # Manager
//
// Manager fans a single event out to every registered observer. Each
// observer runs in its own goroutine so a slow or panicking observer never
// blocks compilation or takes down another observer.
package observer
