package form

// Watch calls fn with the value of the control under key, then with every
// later write. If key is not registered yet, Watch waits for it. The returned
// function stops watching.
func (f *Form) Watch(key string, fn func(any)) func() {
	var (
		stopValue   func()
		stopMembers func()
		stopped     bool
	)

	follow := func(c *Control) {
		fn(c.Read())
		if stopped {
			return
		}
		stopValue = c.cell.Subscribe(fn)
	}

	if c, ok := f.Control(key); ok {
		follow(c)
	} else {
		stopMembers = f.members.Subscribe(func([]string) {
			if stopValue != nil || stopped {
				return
			}
			c, ok := f.Control(key)
			if !ok {
				return
			}
			stopMembers()
			follow(c)
		})
	}

	return func() {
		if stopped {
			return
		}
		stopped = true
		if stopMembers != nil {
			stopMembers()
		}
		if stopValue != nil {
			stopValue()
		}
	}
}
