package models

// NodeExecutionResult is the outcome of one node execution. OutputPorts maps
// named output ports to values for downstream consumption; Data is the whole
// payload. An executor that cannot complete returns Success=false with Error
// set instead of returning a Go error, so propagation policy stays with the
// execution loop.
type NodeExecutionResult struct {
	Success             bool           `json:"success"`
	Data                map[string]any `json:"data,omitempty"`
	Error               string         `json:"error,omitempty"`
	ExecutionTimeMillis int64          `json:"execution_time_ms"`
	OutputPorts         map[string]any `json:"output_ports,omitempty"`
}

// PortValue resolves the value a downstream connection reads from this
// result. The contract: the named output port wins; when the port was not
// explicitly populated the whole Data payload is used instead. Multi-output
// executors rely on this, so the fallback is deliberate and tested rather
// than an implicit default.
func (r *NodeExecutionResult) PortValue(port string) any {
	if r == nil {
		return nil
	}

	if value, ok := r.OutputPorts[port]; ok {
		return value
	}

	if r.Data != nil {
		return r.Data
	}

	return nil
}

// FailureResult builds a failed result with the given error message.
func FailureResult(message string) *NodeExecutionResult {
	return &NodeExecutionResult{
		Success: false,
		Error:   message,
	}
}

// SuccessResult builds a successful result whose whole payload is also
// published on the main output port.
func SuccessResult(data map[string]any) *NodeExecutionResult {
	return &NodeExecutionResult{
		Success:     true,
		Data:        data,
		OutputPorts: map[string]any{PortMain: data},
	}
}
