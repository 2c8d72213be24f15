package workshop

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
	"github.com/GriffinCanCode/weldshop/internal/shared/id"
)

var (
	ErrAlreadyStarted     = errors.New("workshop already started")
	ErrNotStarted         = errors.New("workshop not started")
	ErrAlreadyStopped     = errors.New("workshop already stopped")
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")
	ErrNoSuppliers        = errors.New("no suppliers registered")
	ErrUnknownSupplier    = errors.New("unknown supplier")
	ErrDuplicateSupplier  = errors.New("supplier already registered")
)

// Stage names the pipeline step where an order failed
type Stage string

const (
	StageIntake    Stage = "intake"
	StageBroadcast Stage = "broadcast"
	StageSolve     Stage = "solve"
	StageDeliver   Stage = "deliver"
)

// Failure describes an order that could not be completed
type Failure struct {
	OrderID  id.OrderID
	Material pricing.MaterialID
	Stage    Stage
	Err      error
}

func (f *Failure) Error() string {
	if f.OrderID == "" {
		return fmt.Sprintf("%s failed: %v", f.Stage, f.Err)
	}
	return fmt.Sprintf("order %s (material %d) failed at %s: %v", f.OrderID, f.Material, f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// PanicError wraps a value recovered from a collaborator panic
type PanicError struct {
	Value interface{}
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// protect runs fn and converts a panic into a *PanicError
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}
