package loglist

import "fmt"

// DataError reports a defect in the log-list dataset. Field names the
// offending JSON field; Log, when non-empty, names the log entry it
// belongs to.
type DataError struct {
	Field string
	Log   string
	Err   error
}

func (e *DataError) Error() string {
	if e.Log != "" {
		return fmt.Sprintf("log list: field %q of log %q: %s", e.Field, e.Log, e.Err)
	}
	return fmt.Sprintf("log list: field %q: %s", e.Field, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
