package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// chatSession is the conversation the chat screen drives.
type chatSession interface {
	Send(ctx context.Context, message string, image *client.File) (*types.ChatResponse, error)
	Messages() []types.ChatMessage
	OrchardID() int
}

func newChatCmd(a *app) *cobra.Command {
	var (
		message   string
		imagePath string
		orchardID int
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the orchard assistant",
		Long: "Chat sends one message with -m (and optionally --image) and prints the\n" +
			"answer. Without -m or --image it opens an interactive chat screen.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv := view.NewConversation(a.api, orchardID)
			defer conv.Close()

			if message == "" && imagePath == "" {
				if a.interactive != nil {
					return a.interactive(cmd, conv)
				}
				return runChatTUI(cmd.Context(), conv, a.in, a.out)
			}

			var image *client.File
			if imagePath != "" {
				f, err := client.ReadFile(imagePath)
				if err != nil {
					return err
				}
				image = &f
			}
			resp, err := conv.Send(cmd.Context(), message, image)
			if err != nil {
				return withFallback(err, view.MsgChatFailed)
			}
			return a.emit(resp, func(w io.Writer) {
				fmt.Fprint(w, renderMarkdown(resp.Answer))
				if resp.AgenticAction != "" {
					fmt.Fprintln(w, dimStyle.Render("Action: "+resp.AgenticAction))
				}
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "send one message and exit")
	cmd.Flags().StringVar(&imagePath, "image", "", "attach a leaf image")
	cmd.Flags().IntVar(&orchardID, "orchard", 0, "orchard the conversation is about")
	return cmd
}
