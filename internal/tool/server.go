// Package tool exposes the assistant as MCP tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type assistantSvc interface {
	listMessagesSvc
	draftReplySvc
	learnStyleSvc
	listExamplesSvc
	ensureLabelSvc
}

// NewServer creates an MCP server with the drafting tools.
func NewServer(svc assistantSvc) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "gmail-drafter", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_messages",
		Description: "List recent Gmail messages (drafts excluded by default) with their metadata",
	}, NewListMessages(svc).ListMessages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_reply",
		Description: "Generate a reply to a message in the sender's learned style and save it as a Gmail draft",
	}, NewDraftReply(svc).DraftReply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "learn_style",
		Description: "Learn a sender's preferred style from a draft the user edited",
	}, NewLearnStyle(svc).LearnStyle)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_examples",
		Description: "List the edits learned for a sender, oldest first",
	}, NewListExamples(svc).ListExamples)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ensure_label",
		Description: "Find or create the Gmail label applied to messages that received a draft",
	}, NewEnsureLabel(svc).EnsureLabel)

	return server
}
