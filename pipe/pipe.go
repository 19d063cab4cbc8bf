// Package pipe runs sequences of fallible operations as a single unit.
package pipe

// OpFuncs is a series of operations, run in order until the first error
type OpFuncs []func() error

// Do runs every operation in order, returning the first error encountered
func (ops OpFuncs) Do() error {
	for _, op := range ops {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}
