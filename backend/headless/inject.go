package headless

import (
	"errors"
	"fmt"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// ErrNothingToInject is returned by Inject before the instance has the
// surface or device the fault targets.
var ErrNothingToInject = errors.New("headless: no surface or device to inject into")

// Inject applies a named fault to the most recently created surface or
// device. The names match the fault keys of window scenarios. reason is
// used as the driver message for device and submit faults.
func (i *Instance) Inject(fault, reason string) error {
	if reason == "" {
		reason = "injected " + fault
	}
	var s *Surface
	if all := i.Surfaces(); len(all) > 0 {
		s = all[len(all)-1]
	}
	var d *Device
	if all := i.Devices(); len(all) > 0 {
		d = all[len(all)-1]
	}

	switch fault {
	case "surface_lost", "surface_outdated", "acquire_timeout", "suboptimal", "configure_reject":
		if s == nil {
			return ErrNothingToInject
		}
	case "device_lost", "submit_fail":
		if d == nil {
			return ErrNothingToInject
		}
	default:
		return fmt.Errorf("headless: unknown fault %q", fault)
	}

	switch fault {
	case "surface_lost":
		s.Lose()
	case "surface_outdated":
		s.Outdate()
	case "acquire_timeout":
		s.Script(Outcome{Err: gpucore.ErrTimeout})
	case "suboptimal":
		s.Script(Outcome{Suboptimal: true})
	case "configure_reject":
		s.RejectConfigure(errors.New(reason))
	case "device_lost":
		d.Lose(errors.New(reason))
	case "submit_fail":
		d.FailNextSubmit(fmt.Errorf("%w: %s", gpucore.ErrDeviceLost, reason))
	}
	return nil
}
