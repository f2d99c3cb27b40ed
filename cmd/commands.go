package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/usecase"
)

var (
	advisorLabel = color.New(color.FgMagenta, color.Bold).SprintFunc()
	headingLabel = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint        = color.New(color.Faint).SprintFunc()
	okLabel      = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func newAskCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask the advisor a single question and print the answer",
		Example: `  advisor-chat ask "How should I create a monthly budget?"
  advisor-chat ask should I buy a house or keep renting`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, f, false)
			if err != nil {
				return err
			}
			defer s.close()

			out, err := s.conv.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return inputError(err)
			}
			printReply(cmd.OutOrStdout(), out)
			return out.Err
		},
	}
}

func newUploadCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a .docx document to the advisor's knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := usecase.OpenDocument(args[0])
			if err != nil {
				return inputError(err)
			}

			s, err := newSession(cmd, f, false)
			if err != nil {
				return err
			}
			defer s.close()

			out, err := s.conv.Upload(cmd.Context(), doc)
			if err != nil {
				return inputError(err)
			}
			if !out.Success {
				return errors.New(out.Status)
			}
			printUpload(cmd.OutOrStdout(), doc, out)
			return nil
		},
	}
}

// inputError turns a validation error into the message a user would see in
// the chat screen.
func inputError(err error) error {
	if msg := usecase.ValidationMessage(err); msg != "" {
		return errors.New(msg)
	}
	return err
}

func printReply(w io.Writer, out usecase.TurnOutcome) {
	fmt.Fprintf(w, "%s %s\n", advisorLabel("Advisor"), faint(out.Reply.CreatedAt.Format("15:04")))
	fmt.Fprintln(w, out.Reply.Content)
	if len(out.Links) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", headingLabel("Web Resources"))
	for _, l := range out.Links {
		printLink(w, l)
	}
}

func printLink(w io.Writer, l domain.Link) {
	fmt.Fprintf(w, "  • %s %s\n", l.Title, faint("("+l.URL+")"))
}

func printUpload(w io.Writer, doc domain.Document, out usecase.UploadOutcome) {
	fmt.Fprintf(w, "%s %s\n", okLabel("✓"), out.Status)
	if out.Result.ChunksCreated != nil {
		fmt.Fprintf(w, "%s\n", faint(fmt.Sprintf("%s was split into %d searchable chunks", doc.Name, *out.Result.ChunksCreated)))
	}
}
