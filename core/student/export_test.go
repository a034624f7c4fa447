package student

import "time"

// SetNowFunc replaces the check-in clock until the returned func is called.
func SetNowFunc(f func() time.Time) (restore func()) {
	nowFunc = f
	return func() { nowFunc = time.Now }
}
