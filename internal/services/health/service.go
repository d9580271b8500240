package health

// Checker reports whether the LLM credential is present.
type Checker interface {
	Configured() bool
}

// Status is the health payload.
type Status struct {
	OK            bool `json:"ok"`
	LLMConfigured bool `json:"llmConfigured"`
}

// Service encapsulates health-related checks.
type Service struct {
	llm Checker
}

// NewService constructs a new health service.
func NewService(llm Checker) *Service {
	return &Service{llm: llm}
}

// Status reports liveness and whether generation can be attempted.
func (s *Service) Status() Status {
	configured := s.llm != nil && s.llm.Configured()
	return Status{OK: true, LLMConfigured: configured}
}
