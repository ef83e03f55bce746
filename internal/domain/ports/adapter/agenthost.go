package adapter

import "context"

// AgentReply is one response from the remote agent under test. Reward and
// Stop come from the host's own scoring; Stop=true means the host considers
// the conversation finished.
type AgentReply struct {
	Content string `json:"content"`
	Reward  *int   `json:"reward,omitempty"` // -1 | 0 | 1 when present
	Stop    bool   `json:"stop"`
}

// AgentHostAdapter is the port for the service hosting the agent under test.
// A thread must be created before the first Send.
type AgentHostAdapter interface {
	CreateThread(ctx context.Context) (string, error)
	Send(ctx context.Context, threadID, message string) (*AgentReply, error)
}
