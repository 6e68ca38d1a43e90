package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/service"
	"github.com/vbonduro/txdao/internal/store"
)

func newPhotoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Manage photos and their comments",
	}

	photos := func() *service.PhotoService {
		return service.NewPhotoService(store.NewPhotoStore(a.exec), a.logger)
	}

	var (
		url         string
		description string
		comments    []string
	)
	publish := &cobra.Command{
		Use:   "publish",
		Short: "Store a photo with optional comments",
		Long: `Store a photo together with its initial comments in one transaction.

Examples:
  txdao photo publish --url https://img/cat.png --description "a cat"
  txdao photo publish --url https://img/dog.png --description "a dog" --comment nice --comment wow`,
		Args: cobra.NoArgs,
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			p, err := photos().Publish(cmd.Context(), url, description, comments...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "published photo %d\n", p.ID)
			return nil
		}),
	}
	publish.Flags().StringVar(&url, "url", "", "Photo URL (unique)")
	publish.Flags().StringVar(&description, "description", "", "Photo description")
	publish.Flags().StringArrayVar(&comments, "comment", nil, "Initial comment, repeatable")
	_ = publish.MarkFlagRequired("url")
	_ = publish.MarkFlagRequired("description")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a photo with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := photos().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printPhoto(cmd.OutOrStdout(), p)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List photos",
		Args:  cobra.NoArgs,
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			all, err := photos().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tURL\tDESCRIPTION")
			for _, p := range all {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.URL, p.Description)
			}
			return w.Flush()
		}),
	}

	comment := &cobra.Command{
		Use:   "comment <photo-id> <text>",
		Short: "Add a comment to a photo",
		Args:  cobra.ExactArgs(2),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := photos().Comment(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added comment %d to photo %d\n", c.ID, c.PhotoID())
			return nil
		}),
	}

	uncomment := &cobra.Command{
		Use:   "uncomment <photo-id> <comment-id>",
		Short: "Delete a comment from a photo",
		Args:  cobra.ExactArgs(2),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			photoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			commentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := photos().Moderate(cmd.Context(), photoID, commentID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed comment %d from photo %d\n", commentID, photoID)
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a photo and all of its comments",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := photos().Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted photo %d\n", id)
			return nil
		}),
	}

	cmd.AddCommand(publish, show, list, comment, uncomment, del)
	return cmd
}

func printPhoto(out io.Writer, p *domain.Photo) {
	_, _ = fmt.Fprintf(out, "%d %s\n%s\n", p.ID, p.URL, p.Description)
	for _, c := range p.Comments() {
		_, _ = fmt.Fprintf(out, "  #%d [%s] %s\n", c.ID, c.CreatedOn.Format("2006-01-02 15:04:05"), c.Text)
	}
}
