package server

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/thoughtjack/thoughtjack/internal/behavior"
	"github.com/thoughtjack/thoughtjack/internal/phase"
	"github.com/thoughtjack/thoughtjack/internal/scenario"
	"github.com/thoughtjack/thoughtjack/internal/transport"
)

// handleIncoming dispatches one framed line: malformed lines are logged and
// dropped, bare notifications are dropped without logging (no response
// expected); requests
// are routed to their MCP method handler, delivered per the scoping
// chain, and any entry actions from a phase advance are flushed after the
// response completes writing (spec.md §5 "Ordering guarantees").
func (s *Server) handleIncoming(ctx context.Context, msg transport.Incoming) {
	if msg.Err != nil {
		s.log.Warn("dropping malformed line", zap.Error(msg.Err))
		return
	}
	if msg.IsNotif || msg.Request == nil {
		return
	}

	req := msg.Request
	fired := s.engine.OnRequest(req.Method, toolNameFromParams(req.Method, req.Params))
	if fired == nil {
		fired = s.engine.OnContentMatch("request", string(req.Params))
	}

	resp, item := s.dispatch(req)
	s.deliverResponse(ctx, req, resp, item)

	if fired != nil {
		s.flushEntryActions(fired)
	}

	s.runSideEffects(ctx, scenario.OnRequest, req, resp)
}

// dispatch routes a request to its MCP method handler against the current
// effective state, returning the response and the item scope (for
// delivery-chain resolution) the response concerns.
func (s *Server) dispatch(req *transport.Request) (*transport.Response, behavior.Request) {
	state := s.engine.EffectiveState()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req), behavior.Request{}
	case "tools/list":
		return s.handleToolsList(req, state), behavior.Request{}
	case "tools/call":
		return s.handleToolsCall(req, state)
	case "resources/list":
		return s.handleResourcesList(req, state), behavior.Request{}
	case "resources/read":
		return s.handleResourcesRead(req, state)
	case "prompts/list":
		return s.handlePromptsList(req, state), behavior.Request{}
	case "prompts/get":
		return s.handlePromptsGet(req, state)
	default:
		return transport.NewError(req.ID, transport.CodeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method)), behavior.Request{}
	}
}

func (s *Server) handleInitialize(req *transport.Request) *transport.Response {
	result := map[string]any{
		"protocolVersion": s.scenario.ServerInfo.ProtocolVersion,
		"serverInfo": map[string]any{
			"name":    s.scenario.ServerInfo.Name,
			"version": s.scenario.ServerInfo.Version,
		},
		"capabilities": map[string]any{
			"tools":     map[string]any{"listChanged": s.scenario.Capabilities.ToolsListChanged},
			"resources": map[string]any{"listChanged": s.scenario.Capabilities.ResourcesListChanged},
			"prompts":   map[string]any{"listChanged": s.scenario.Capabilities.PromptsListChanged},
		},
	}
	resp, err := transport.NewResult(req.ID, result)
	if err != nil {
		return transport.NewError(req.ID, transport.CodeInternalError, err.Error())
	}
	return resp
}

func (s *Server) handleToolsList(req *transport.Request, state *phase.EffectiveState) *transport.Response {
	tools := make([]map[string]any, 0, len(state.Tools))
	for _, t := range state.Tools {
		tools = append(tools, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.InputSchema,
		})
	}
	resp, err := transport.NewResult(req.ID, map[string]any{"tools": tools})
	if err != nil {
		return transport.NewError(req.ID, transport.CodeInternalError, err.Error())
	}
	return resp
}

func (s *Server) handleToolsCall(req *transport.Request, state *phase.EffectiveState) (*transport.Response, behavior.Request) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return transport.NewError(req.ID, transport.CodeInvalidParams, "invalid tools/call params"), behavior.Request{}
	}

	for _, t := range state.Tools {
		if t.Name == params.Name {
			resp := s.respondWithContent(req.ID, t.Response)
			return resp, behavior.Request{ItemKind: "tool", ItemName: params.Name}
		}
	}
	return transport.NewError(req.ID, transport.CodeInvalidParams, fmt.Sprintf("unknown tool %q", params.Name)), behavior.Request{ItemKind: "tool", ItemName: params.Name}
}

func (s *Server) handleResourcesList(req *transport.Request, state *phase.EffectiveState) *transport.Response {
	resources := make([]map[string]any, 0, len(state.Resources))
	for _, r := range state.Resources {
		resources = append(resources, map[string]any{
			"uri":         r.URI,
			"name":        r.Name,
			"description": r.Description,
			"mimeType":    r.MimeType,
		})
	}
	resp, err := transport.NewResult(req.ID, map[string]any{"resources": resources})
	if err != nil {
		return transport.NewError(req.ID, transport.CodeInternalError, err.Error())
	}
	return resp
}

func (s *Server) handleResourcesRead(req *transport.Request, state *phase.EffectiveState) (*transport.Response, behavior.Request) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return transport.NewError(req.ID, transport.CodeInvalidParams, "invalid resources/read params"), behavior.Request{}
	}
	for _, r := range state.Resources {
		if r.URI == params.URI {
			resp := s.respondWithContent(req.ID, r.Response)
			return resp, behavior.Request{ItemKind: "resource", ItemName: r.Name}
		}
	}
	return transport.NewError(req.ID, transport.CodeInvalidParams, fmt.Sprintf("unknown resource %q", params.URI)), behavior.Request{ItemKind: "resource"}
}

func (s *Server) handlePromptsList(req *transport.Request, state *phase.EffectiveState) *transport.Response {
	prompts := make([]map[string]any, 0, len(state.Prompts))
	for _, p := range state.Prompts {
		args := make([]map[string]any, 0, len(p.Arguments))
		for _, a := range p.Arguments {
			args = append(args, map[string]any{"name": a.Name, "description": a.Description, "required": a.Required})
		}
		prompts = append(prompts, map[string]any{"name": p.Name, "description": p.Description, "arguments": args})
	}
	resp, err := transport.NewResult(req.ID, map[string]any{"prompts": prompts})
	if err != nil {
		return transport.NewError(req.ID, transport.CodeInternalError, err.Error())
	}
	return resp
}

func (s *Server) handlePromptsGet(req *transport.Request, state *phase.EffectiveState) (*transport.Response, behavior.Request) {
	var params struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return transport.NewError(req.ID, transport.CodeInvalidParams, "invalid prompts/get params"), behavior.Request{}
	}
	for _, p := range state.Prompts {
		if p.Name == params.Name {
			resp := s.respondWithContent(req.ID, p.Response)
			return resp, behavior.Request{ItemKind: "prompt", ItemName: p.Name}
		}
	}
	return transport.NewError(req.ID, transport.CodeInvalidParams, fmt.Sprintf("unknown prompt %q", params.Name)), behavior.Request{ItemKind: "prompt"}
}

// respondWithContent renders a scenario.Content (literal text or a
// compiled generator) into a tools/call-shaped result.
func (s *Server) respondWithContent(id json.RawMessage, content scenario.Content) *transport.Response {
	text, err := s.renderContent(content)
	if err != nil {
		return transport.NewError(id, transport.CodeInternalError, err.Error())
	}
	resp, err := transport.NewResult(id, map[string]any{"content": []map[string]any{{"type": "text", "text": text}}})
	if err != nil {
		return transport.NewError(id, transport.CodeInternalError, err.Error())
	}
	return resp
}

func toolNameFromParams(method string, params json.RawMessage) string {
	if method != "tools/call" {
		return ""
	}
	var p struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return ""
	}
	return p.Name
}
