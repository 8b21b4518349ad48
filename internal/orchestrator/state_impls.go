package orchestrator

// IdleState - no job in flight
type IdleState struct{}

func (s *IdleState) Name() string { return "idle" }
func (s *IdleState) ToPreparing() *PreparingState {
	return &PreparingState{}
}

// PreparingState - building the analysis backend from the job inputs
type PreparingState struct{}

func (s *PreparingState) Name() string { return "preparing" }
func (s *PreparingState) ToConfiguringDriver() *ConfiguringDriverState {
	return &ConfiguringDriverState{}
}
func (s *PreparingState) ToFailed() *FailedState {
	return &FailedState{}
}

// ConfiguringDriverState - pushing driver-side parameters to the backend
type ConfiguringDriverState struct{}

func (s *ConfiguringDriverState) Name() string { return "configuring_driver" }
func (s *ConfiguringDriverState) ToConfiguringReceiver() *ConfiguringReceiverState {
	return &ConfiguringReceiverState{}
}
func (s *ConfiguringDriverState) ToFailed() *FailedState {
	return &FailedState{}
}

// ConfiguringReceiverState - pushing receiver-side parameters to the backend
type ConfiguringReceiverState struct{}

func (s *ConfiguringReceiverState) Name() string { return "configuring_receiver" }
func (s *ConfiguringReceiverState) ToScanning() *ScanningState {
	return &ScanningState{}
}
func (s *ConfiguringReceiverState) ToSimulating() *SimulatingState {
	return &SimulatingState{}
}
func (s *ConfiguringReceiverState) ToFailed() *FailedState {
	return &FailedState{}
}

// ScanningState - coupling scan across driver ports
type ScanningState struct{}

func (s *ScanningState) Name() string { return "scanning" }
func (s *ScanningState) ToReporting() *ReportingState {
	return &ReportingState{}
}
func (s *ScanningState) ToFailed() *FailedState {
	return &FailedState{}
}

// SimulatingState - transient waveform simulation
type SimulatingState struct{}

func (s *SimulatingState) Name() string { return "simulating" }
func (s *SimulatingState) ToReporting() *ReportingState {
	return &ReportingState{}
}
func (s *SimulatingState) ToFailed() *FailedState {
	return &FailedState{}
}

// ReportingState - aggregating results
type ReportingState struct{}

func (s *ReportingState) Name() string { return "reporting" }
func (s *ReportingState) ToCompleted() *CompletedState {
	return &CompletedState{}
}
func (s *ReportingState) ToFailed() *FailedState {
	return &FailedState{}
}

// Terminal States

// CompletedState - job finished successfully
type CompletedState struct{}

func (s *CompletedState) Name() string { return "completed" }

// FailedState - job failed
type FailedState struct{}

func (s *FailedState) Name() string { return "failed" }
