package pdf2html

import "fmt"

// DocumentOpenError reports that the input could not be parsed as a
// PDF document. It is fatal for the whole render call; nothing is
// written when it is returned.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("open document: %v", e.Err)
	}
	return fmt.Sprintf("open document %s: %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error { return e.Err }

// recoveredError normalizes a recover() value into an error.
func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
