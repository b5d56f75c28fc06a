package core

// OptimizerState carries the bookkeeping of an Adam-style optimizer for
// one member: the step counter and per-parameter moment estimates. It is
// replaced wholesale when a member is overwritten during selection.
type OptimizerState struct {
	Step         int64     `json:"step"`
	FirstMoment  []float64 `json:"first_moment,omitempty"`
	SecondMoment []float64 `json:"second_moment,omitempty"`
}

// Clone returns an independent copy of the optimizer state.
func (o OptimizerState) Clone() OptimizerState {
	return OptimizerState{
		Step:         o.Step,
		FirstMoment:  cloneFloats(o.FirstMoment),
		SecondMoment: cloneFloats(o.SecondMoment),
	}
}

// AgentState is the concrete population member used by the training
// loop: policy parameters, their target copies, optimizer state,
// hyperparameters and the member's replay buffer. All fields are
// serializable so a whole population can be checkpointed and restored.
type AgentState struct {
	AgentID      string         `json:"agent_id"`
	Params       []float64      `json:"params"`
	TargetParams []float64      `json:"target_params,omitempty"`
	OptState     OptimizerState `json:"opt_state"`
	Hypers       Hyperparams    `json:"hyperparams"`
	Buffer       *ReplayBuffer  `json:"buffer,omitempty"`
	EnvSteps     int64          `json:"env_steps"`
}

// NewAgentState creates a member with the given parameters and
// hyperparameters and an empty replay buffer of the given capacity.
// A capacity of zero leaves the member without a buffer.
func NewAgentState(agentID string, params []float64, hypers Hyperparams, bufferCapacity int) *AgentState {
	state := &AgentState{
		AgentID: agentID,
		Params:  cloneFloats(params),
		Hypers:  hypers.Clone(),
	}
	if bufferCapacity > 0 {
		state.Buffer = NewReplayBuffer(bufferCapacity)
	}
	return state
}

// DeepCopy implements Member. Every field is copied; the result shares
// no memory with the receiver.
func (a *AgentState) DeepCopy() Member {
	cp := &AgentState{
		AgentID:      a.AgentID,
		Params:       cloneFloats(a.Params),
		TargetParams: cloneFloats(a.TargetParams),
		OptState:     a.OptState.Clone(),
		Hypers:       a.Hypers.Clone(),
		EnvSteps:     a.EnvSteps,
	}
	if a.Buffer != nil {
		cp.Buffer = a.Buffer.Clone()
	}
	return cp
}

// Hyperparams implements Member.
func (a *AgentState) Hyperparams() Hyperparams {
	return a.Hypers
}

// SetHyperparams implements Member.
func (a *AgentState) SetHyperparams(h Hyperparams) {
	a.Hypers = h
}

func cloneFloats(src []float64) []float64 {
	if src == nil {
		return nil
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}
