package core

// AgentResponse is the output an agent hands back from Handle. It is owned by
// the caller that awaited it and never mutated after construction.
type AgentResponse struct {
	AgentName string `json:"agent_name"`
	Content   string `json:"content"`
}
