package server

import "time"

// wallClockMs returns the current time in Unix milliseconds. Command
// handlers that compute absolute deadlines from a relative EX/PX/EXPIRE
// argument call through this single point, mirroring core.Store's own
// now() indirection.
func wallClockMs() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
