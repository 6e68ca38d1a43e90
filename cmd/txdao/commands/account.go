package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/store"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	var account domain.Account
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			if err := store.NewAccountStore(a.exec).Save(cmd.Context(), &account); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created account %d\n", account.ID)
			return nil
		}),
	}
	create.Flags().StringVar(&account.Email, "email", "", "Email address (unique)")
	create.Flags().StringVar(&account.FirstName, "first-name", "", "First name")
	create.Flags().StringVar(&account.LastName, "last-name", "", "Last name")
	_ = create.MarkFlagRequired("email")

	var byEmail string
	get := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one account by id or --email",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			accounts := store.NewAccountStore(a.exec)
			var (
				found *domain.Account
				err   error
			)
			switch {
			case byEmail != "":
				found, err = accounts.FindByEmail(cmd.Context(), byEmail)
			case len(args) == 1:
				id, perr := parseID(args[0])
				if perr != nil {
					return perr
				}
				found, err = accounts.FindByID(cmd.Context(), id)
				if err == nil && found == nil {
					err = fmt.Errorf("account %d: %w", id, domain.ErrNotFound)
				}
			default:
				return fmt.Errorf("an id or --email is required")
			}
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), found)
			return nil
		}),
	}
	get.Flags().StringVar(&byEmail, "email", "", "Look the account up by email")

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			all, err := store.NewAccountStore(a.exec).FindAll(cmd.Context())
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), all...)
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.NewAccountStore(a.exec).Remove(cmd.Context(), &domain.Account{ID: id}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted account %d\n", id)
			return nil
		}),
	}

	cmd.AddCommand(create, get, list, del)
	return cmd
}

func printAccounts(out io.Writer, accounts ...*domain.Account) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tNAME\tCREATED")
	for _, acc := range accounts {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\n", acc.ID, acc.Email, acc.FirstName, acc.LastName,
			acc.CreationTime.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
