package device

import "github.com/ofuangka/smart/internal/model"

// View is the redacted API read model.
type View = model.DeviceView

// State is the normalized status of one device.
type State = model.State

// ActionResult acknowledges a dispatched action.
type ActionResult = model.ActionResult
