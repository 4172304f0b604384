package form

// formNotifyKey is the timer key for notifications not attributable to a
// single field (reset, submit merges).
const formNotifyKey = "*"

// notify arms the debounced change notification for a key, cancelling any
// prior pending timer for the same key. The value map is computed when the
// timer fires, so the callback carries the first state observed after the
// delay rather than the state at arm time.
//
// Schedule is called with the form lock released: the Scheduler is free to
// run the callback synchronously, and the callback re-acquires the lock.
func (f *Form) notify(key string) {
	f.mu.Lock()
	if f.onChange == nil {
		f.mu.Unlock()
		return
	}
	delay := f.debounce
	if d, ok := f.fieldDebounce[key]; ok {
		delay = d
	}
	prev := f.timers[key]
	f.mu.Unlock()

	if prev != nil {
		prev()
	}
	cancel := f.scheduler.Schedule(delay, func() {
		f.mu.Lock()
		delete(f.timers, key)
		cb := f.onChange
		values := f.valuesLocked()
		f.mu.Unlock()
		if cb != nil {
			cb(values)
		}
	})

	f.mu.Lock()
	f.timers[key] = cancel
	f.mu.Unlock()
}
