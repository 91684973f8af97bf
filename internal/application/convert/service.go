package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	appchecks "github.com/bryanwahyu/automaton-port/internal/application/checks"
	domai "github.com/bryanwahyu/automaton-port/internal/domain/ai"
	"github.com/bryanwahyu/automaton-port/internal/domain/project"
	"github.com/bryanwahyu/automaton-port/internal/infra/ai/prompt"
)

// Service drives the conversion chat loop: the model reads the source
// project and writes the destination project through tools, and every round
// that touched the destination is gated by a sandboxed cargo check whose
// diagnostics are fed back until the project compiles.
type Service struct {
	Client domai.Client
	Source *project.Project
	Dest   *project.Project
	Checks *appchecks.Service

	// Out receives the conversation transcript; nil disables it.
	Out io.Writer

	// MaxFixRounds caps the fix loop; 0 means no cap.
	MaxFixRounds int

	tools    *toolSet
	messages []domai.Message
}

func NewService(client domai.Client, source, dest *project.Project, checks *appchecks.Service, out io.Writer) *Service {
	s := &Service{
		Client: client,
		Source: source,
		Dest:   dest,
		Checks: checks,
		Out:    out,
		tools:  newToolSet(),
	}
	s.registerProjectTools()
	return s
}

func (s *Service) registerProjectTools() {
	src, dst := s.Source, s.Dest

	s.tools.register("src_list_files",
		"List all files in the source project directory.",
		noParams,
		func(json.RawMessage) (any, error) { return src.ListContents(), nil })

	s.tools.register("src_read_file",
		"Reads the contents of a file in the source project directory.",
		readFileParams,
		func(raw json.RawMessage) (any, error) {
			var args readFileArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, err
			}
			return src.ReadFile(args.Path), nil
		})

	s.tools.register("dst_list_files",
		"List all files in the destination project directory.",
		noParams,
		func(json.RawMessage) (any, error) { return dst.ListContents(), nil })

	s.tools.register("dst_read_file",
		"Reads the contents of a file in the destination project directory.",
		readFileParams,
		func(raw json.RawMessage) (any, error) {
			var args readFileArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, err
			}
			return dst.ReadFile(args.Path), nil
		})

	s.tools.register("dst_write_file",
		"Saves the contents to a file in the destination project directory.",
		writeFileParams,
		func(raw json.RawMessage) (any, error) {
			var args writeFileArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, err
			}
			return dst.WriteFile(args.Path, args.Contents), nil
		})
}

// Convert runs the whole conversion: analyze, convert, then fix rounds
// gated on the compile check until the destination passes or the round cap
// is hit.
func (s *Service) Convert(ctx context.Context) error {
	system := domai.Message{Role: domai.RoleSystem, Content: prompt.GetSystemPrompt()}
	s.messages = []domai.Message{system}
	s.dump(system)

	if err := s.send(ctx, prompt.GetAnalyzePrompt()); err != nil {
		return err
	}

	msg := prompt.GetConvertPrompt()
	rounds := 0
	for {
		if err := s.send(ctx, msg); err != nil {
			return err
		}

		if !s.Dest.Dirty() {
			break
		}
		s.Dest.ClearDirty()

		res, err := s.Checks.RunCheck(ctx, appchecks.RunCheckCommand{Path: s.Dest.Path()})
		if err != nil {
			return err
		}
		if res.ExitCode == 0 {
			break
		}

		rounds++
		if s.MaxFixRounds > 0 && rounds >= s.MaxFixRounds {
			return fmt.Errorf("check still failing after %d fix rounds", rounds)
		}
		msg = prompt.GetFixPrompt(res.Output)
	}
	return nil
}

// send posts one user message and keeps completing until the model stops
// asking for tools.
func (s *Service) send(ctx context.Context, content string) error {
	user := domai.Message{Role: domai.RoleUser, Content: content}
	s.messages = append(s.messages, user)
	s.dump(user)

	for {
		reply, err := s.Client.Complete(ctx, s.messages, s.tools.Definitions())
		if err != nil {
			return err
		}
		s.messages = append(s.messages, reply)
		s.dump(reply)

		if len(reply.ToolCalls) == 0 {
			return nil
		}
		for _, call := range reply.ToolCalls {
			result := s.tools.Dispatch(call)
			s.messages = append(s.messages, result)
		}
	}
}

// dump echoes conversation turns with visible content to the transcript.
func (s *Service) dump(m domai.Message) {
	if s.Out == nil || m.Content == "" {
		return
	}
	switch m.Role {
	case domai.RoleSystem, domai.RoleUser, domai.RoleAssistant:
		fmt.Fprintf(s.Out, "==== %s ====\n%s\n\n", m.Role, m.Content)
	}
}
