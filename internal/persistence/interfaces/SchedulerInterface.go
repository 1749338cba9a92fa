package interfaces

// SchedulerInterface owns the options snapshot lifecycle: Restore at startup,
// periodic saves between Init and Stop, a final Persist on shutdown, then
// Close to release the compressor.
type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	Close()
}
